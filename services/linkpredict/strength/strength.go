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
	"context"
	"math"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Score is the breakdown of one strength computation.
type Score struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Value is AdjacencyTerm + PathTerm.
	Value float64 `json:"value"`

	// AdjacencyTerm is alpha × outdeg(From).
	AdjacencyTerm float64 `json:"adjacency_term"`

	// PathTerm is Σ beta^l × WalkCounts[l-1].
	PathTerm float64 `json:"path_term"`

	// WalkCounts holds the walk count for each length 1..MaxLength.
	WalkCounts []float64 `json:"walk_counts"`

	// MaxLength is the resolved walk length bound.
	MaxLength int `json:"max_length"`
}

// Strength computes the link-prediction strength of the ordered pair (a, b).
//
// Description:
//
//	Returns alpha × outdeg(a) + Σ_{l=1..maxLength} beta^l × PathCount(a, b, l).
//	Self pairs and pairs that are already linked are scored like any other;
//	excluding them is the caller's concern (see Rank).
//
// Errors:
//
//	graph.ErrNodeNotFound - a or b is not in the graph
//	ErrInvalidLength - maxLength is negative or above MaxPathLength
func Strength(g *graph.Graph, a, b string, maxLength int, alpha, beta float64) (float64, error) {
	s, err := computeScore(context.Background(), g, a, b, maxLength, alpha, beta)
	if err != nil {
		return 0, err
	}
	return s.Value, nil
}

// computeScore builds the full Score for one pair.
func computeScore(ctx context.Context, g *graph.Graph, a, b string, maxLength int, alpha, beta float64) (Score, error) {
	counts, err := WalkCounts(ctx, g, a, b, maxLength)
	if err != nil {
		return Score{}, err
	}
	// WalkCounts already resolved a, so the lookup cannot fail.
	ai, _ := g.IndexOf(a)

	s := Score{
		From:          a,
		To:            b,
		AdjacencyTerm: alpha * float64(g.OutDegreeAt(ai)),
		WalkCounts:    counts,
		MaxLength:     maxLength,
	}
	for i, c := range counts {
		if c != 0 {
			s.PathTerm += math.Pow(beta, float64(i+1)) * c
		}
	}
	s.Value = s.AdjacencyTerm + s.PathTerm
	return s, nil
}

// pathTerms returns Σ beta^l × walks(src, v, l) for every node v.
//
// One frontier expansion serves every target, so ranking all pairs costs
// one expansion per source instead of one per pair.
func pathTerms(ctx context.Context, g *graph.Graph, src, maxLength int, beta float64) ([]float64, error) {
	terms := make([]float64, g.NodeCount())
	err := expand(ctx, g, src, maxLength, addFloat64, func(depth int, counts []float64) {
		w := math.Pow(beta, float64(depth))
		for v, c := range counts {
			if c != 0 {
				terms[v] += w * c
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// Estimator scores pairs of one graph with fixed options.
//
// Thread Safety: Safe for concurrent use once the graph is frozen.
type Estimator struct {
	graph *graph.Graph
	opts  Options
}

// NewEstimator validates opts and binds them to g.
//
// Errors:
//
//	ErrNilGraph - g is nil
//	ErrInvalidOptions, ErrInvalidLength - from Options.Validate
func NewEstimator(g *graph.Graph, opts Options) (*Estimator, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{graph: g, opts: opts}, nil
}

// Options returns the options the estimator was built with.
func (e *Estimator) Options() Options {
	return e.opts
}

// Score computes the strength of (a, b) with its breakdown.
func (e *Estimator) Score(ctx context.Context, a, b string) (Score, error) {
	ctx, span := tracer.Start(ctx, "Estimator.Score",
		trace.WithAttributes(
			attribute.String("from", a),
			attribute.String("to", b),
		),
	)
	defer span.End()

	maxLength, err := e.opts.resolveMaxLength(e.graph.NodeCount())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Score{}, err
	}

	s, err := computeScore(ctx, e.graph, a, b, maxLength, e.opts.Alpha, e.opts.Beta)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Score{}, err
	}

	recordEvaluations(ctx, "score", 1)
	span.SetAttributes(
		attribute.Int("max_length", maxLength),
		attribute.Float64("value", s.Value),
	)
	return s, nil
}
