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
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Prediction is a ranked candidate hyperlink.
type Prediction struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Score float64 `json:"score"`

	// Rank is the 1-indexed position in the ranking. Zero before ranking.
	Rank int `json:"rank"`
}

// Label renders the pair as "from -> to".
func (p Prediction) Label() string {
	return p.From + " -> " + p.To
}

// RankOptions configures Rank.
type RankOptions struct {
	// Limit truncates the ranking after sorting. 0 means no limit.
	Limit int
}

// RankScores applies the ranking protocol to already scored pairs.
//
// Description:
//
//	Keeps pairs whose score strictly exceeds alpha + beta and sorts them by
//	score descending. Tied scores are all kept and ordered by From, then To,
//	ascending. Rank fields are assigned from 1. The input is not modified.
func RankScores(scored []Prediction, alpha, beta float64) []Prediction {
	threshold := alpha + beta

	kept := make([]Prediction, 0, len(scored))
	for _, p := range scored {
		if p.Score > threshold {
			kept = append(kept, p)
		}
	}

	slices.SortFunc(kept, func(x, y Prediction) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(x.From, y.From); c != 0 {
			return c
		}
		return cmp.Compare(x.To, y.To)
	})

	for i := range kept {
		kept[i].Rank = i + 1
	}
	return kept
}

// scoreSource scores every missing edge out of src and keeps the pairs
// strictly above threshold. It also returns how many pairs were scored.
func scoreSource(g *graph.Graph, src int, adjacency float64, terms []float64, threshold float64) ([]Prediction, int) {
	from := g.NameAt(src)
	var kept []Prediction
	scored := 0
	for dst := range g.NodeCount() {
		if dst == src {
			continue
		}
		to := g.NameAt(dst)
		if g.HasEdge(from, to) {
			continue
		}
		scored++
		if score := adjacency + terms[dst]; score > threshold {
			kept = append(kept, Prediction{From: from, To: to, Score: score})
		}
	}
	return kept, scored
}

// Rank scores every missing edge of the graph and ranks the strong ones.
//
// Description:
//
//	Candidates are all ordered pairs (n1, n2) with n1 != n2 and no edge
//	n1 -> n2. Each source is expanded once and scored against every target,
//	with sources distributed over a bounded pool of goroutines. The result
//	follows RankScores.
//
// Inputs:
//
//	ctx - Cancels outstanding work; the context error is returned.
//	opts - Limit on returned predictions.
//
// Errors:
//
//	ErrGraphNotFrozen - the graph can still be mutated
//	ErrInvalidLength - resolved max length above MaxPathLength
//
// Thread Safety: Safe for concurrent use.
//
// Complexity: O(V × N × (V + E)) for N the resolved max length.
func (e *Estimator) Rank(ctx context.Context, opts RankOptions) ([]Prediction, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "Estimator.Rank",
		trace.WithAttributes(
			attribute.Int("node_count", e.graph.NodeCount()),
			attribute.Int("edge_count", e.graph.EdgeCount()),
			attribute.Float64("alpha", e.opts.Alpha),
			attribute.Float64("beta", e.opts.Beta),
		),
	)
	defer span.End()

	fail := func(err error) ([]Prediction, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !e.graph.IsFrozen() {
		return fail(ErrGraphNotFrozen)
	}

	maxLength, err := e.opts.resolveMaxLength(e.graph.NodeCount())
	if err != nil {
		return fail(err)
	}

	g := e.graph
	n := g.NodeCount()
	threshold := e.opts.Threshold()
	perSource := make([][]Prediction, n)
	candidateCounts := make([]int, n)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.workers())

	for src := 0; src < n; src++ {
		eg.Go(func() error {
			terms, err := pathTerms(egCtx, g, src, maxLength, e.opts.Beta)
			if err != nil {
				return err
			}

			adjacency := e.opts.Alpha * float64(g.OutDegreeAt(src))
			perSource[src], candidateCounts[src] = scoreSource(g, src, adjacency, terms, threshold)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fail(err)
	}

	var strong []Prediction
	candidates := 0
	for src, preds := range perSource {
		strong = append(strong, preds...)
		candidates += candidateCounts[src]
	}

	ranked := RankScores(strong, e.opts.Alpha, e.opts.Beta)
	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}

	duration := time.Since(start)
	recordEvaluations(ctx, "rank", candidates)
	recordRankMetrics(ctx, duration, candidates, len(ranked))

	slog.Debug("rank completed",
		slog.Int("node_count", n),
		slog.Int("max_length", maxLength),
		slog.Int("candidates", candidates),
		slog.Int("ranked", len(ranked)),
		slog.Duration("duration", duration),
	)

	span.SetAttributes(
		attribute.Int("max_length", maxLength),
		attribute.Int("candidates", candidates),
		attribute.Int("ranked", len(ranked)),
	)
	return ranked, nil
}
