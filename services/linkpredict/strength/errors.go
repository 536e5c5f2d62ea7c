// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package strength scores how likely a missing hyperlink is.
//
// For an ordered pair (a, b) the strength is
//
//	alpha * outdeg(a) + Σ_{l=1..N} beta^l * walks(a, b, l)
//
// where walks(a, b, l) is the number of directed walks of exactly l edges
// from a to b. Walks may revisit nodes, so cycles contribute at every length
// they fit into.
//
// # Walk Counting
//
// Walks are counted by frontier expansion: the frontier at depth d holds,
// for every node v, the number of walks of length d from a to v. Depth d+1
// pushes each multiplicity along every out-edge of v. This counts exactly
// the walks an exhaustive depth-first enumeration would visit, in
// O(N × (V + E)) time instead of O(outdeg^N). One expansion from a yields
// the counts to every target at once, which Rank exploits.
//
// Walk enumeration (Walks) uses an explicit, depth-bounded worklist pruned
// by a backward reachability table, and is meant for inspecting walks, not
// for scoring.
//
// # Thread Safety
//
// Every function only reads the graph. Rank scores sources concurrently and
// therefore requires a frozen graph.
package strength

import "errors"

// Sentinel errors for scoring operations.
var (
	// ErrInvalidLength is returned for a negative walk length or a length
	// above MaxPathLength.
	ErrInvalidLength = errors.New("invalid walk length")

	// ErrCountOverflow is returned when an exact walk count does not fit
	// in an int64.
	ErrCountOverflow = errors.New("walk count overflows int64")

	// ErrSearchTooLarge is returned when listing walks would need a
	// reachability table above the memory budget.
	ErrSearchTooLarge = errors.New("walk search too large")

	// ErrGraphNotFrozen is returned when concurrent scoring is requested on
	// a graph that can still be mutated.
	ErrGraphNotFrozen = errors.New("graph must be frozen before ranking")

	// ErrNilGraph is returned when no graph is supplied.
	ErrNilGraph = errors.New("graph is nil")

	// ErrInvalidOptions is returned for non-finite weights or a negative
	// worker count.
	ErrInvalidOptions = errors.New("invalid scoring options")
)
