// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package strength

import (
	"fmt"
	"math"
	"runtime"
)

// Scoring configuration constants.
const (
	// DefaultAlpha weights the source out-degree.
	DefaultAlpha = 0.1

	// DefaultBeta is the per-length decay of walk counts.
	DefaultBeta = 0.5

	// MaxPathLength is the largest walk length accepted anywhere.
	//
	// Counting cost is linear in the length, so this bound is about
	// runaway inputs, not about branching. Exact int64 counts overflow much
	// earlier on dense graphs (roughly when length × log2(outdeg) > 63);
	// PathCount reports that as ErrCountOverflow.
	MaxPathLength = 1 << 16

	// maxWorkers caps the number of scoring goroutines regardless of CPU count.
	maxWorkers = 8
)

// Options configures an Estimator.
type Options struct {
	// Alpha weights the out-degree of the source node.
	Alpha float64 `json:"alpha" yaml:"alpha"`

	// Beta is the geometric decay per walk length. Values in [0, 1) are
	// expected but not enforced here.
	Beta float64 `json:"beta" yaml:"beta"`

	// MaxLength bounds the walk lengths summed. 0 means the node count of
	// the graph being scored.
	MaxLength int `json:"max_length" yaml:"max_length"`

	// Workers is the number of goroutines used by Rank. 0 means
	// min(NumCPU, 8).
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultOptions returns the baseline scoring parameters.
func DefaultOptions() Options {
	return Options{
		Alpha: DefaultAlpha,
		Beta:  DefaultBeta,
	}
}

// Validate reports whether the options can be used for scoring.
func (o Options) Validate() error {
	if math.IsNaN(o.Alpha) || math.IsInf(o.Alpha, 0) {
		return fmt.Errorf("%w: alpha %v", ErrInvalidOptions, o.Alpha)
	}
	if math.IsNaN(o.Beta) || math.IsInf(o.Beta, 0) {
		return fmt.Errorf("%w: beta %v", ErrInvalidOptions, o.Beta)
	}
	if o.MaxLength < 0 || o.MaxLength > MaxPathLength {
		return fmt.Errorf("%w: max length %d", ErrInvalidLength, o.MaxLength)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// Threshold is the score a predicted edge must strictly exceed to be ranked.
func (o Options) Threshold() float64 {
	return o.Alpha + o.Beta
}

// workers resolves the worker count.
func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return min(runtime.NumCPU(), maxWorkers)
}

// resolveMaxLength returns the walk length bound for a graph of nodeCount nodes.
func (o Options) resolveMaxLength(nodeCount int) (int, error) {
	n := o.MaxLength
	if n == 0 {
		n = nodeCount
	}
	if n > MaxPathLength {
		return 0, fmt.Errorf("%w: %d exceeds %d, set an explicit max length", ErrInvalidLength, n, MaxPathLength)
	}
	return n, nil
}
