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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankScores_Threshold(t *testing.T) {
	scored := []Prediction{
		{From: "X", To: "Y", Score: 0.9},
		{From: "X", To: "Z", Score: 0.2},
	}

	got := RankScores(scored, 0.1, 0.4)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].From)
	assert.Equal(t, "Y", got[0].To)
	assert.Equal(t, 1, got[0].Rank)
	assert.Zero(t, scored[0].Rank, "input is not modified")
}

func TestRankScores_StrictThresholdAndTies(t *testing.T) {
	scored := []Prediction{
		{From: "b", To: "a", Score: 2},
		{From: "a", To: "c", Score: 2},
		{From: "a", To: "b", Score: 2},
		{From: "c", To: "a", Score: 3},
		{From: "c", To: "b", Score: 1},
	}

	got := RankScores(scored, 0.5, 0.5)

	labels := make([]string, len(got))
	for i, p := range got {
		labels[i] = p.Label()
		assert.Equal(t, i+1, p.Rank)
	}
	assert.Equal(t, []string{"c -> a", "a -> b", "a -> c", "b -> a"}, labels)
}

func TestRankScores_Empty(t *testing.T) {
	assert.Empty(t, RankScores(nil, 0.1, 0.5))
}

func TestEstimator_Rank_RequiresFrozenGraph(t *testing.T) {
	g := buildGraph(t, false, [2]string{"A", "B"})
	est, err := NewEstimator(g, DefaultOptions())
	require.NoError(t, err)

	_, err = est.Rank(context.Background(), RankOptions{})
	assert.ErrorIs(t, err, ErrGraphNotFrozen)
}

func TestEstimator_Rank_Chain(t *testing.T) {
	// A -> C scores 0.35, under the 0.6 bar.
	est, err := NewEstimator(chainGraph(t), Options{Alpha: 0.1, Beta: 0.5})
	require.NoError(t, err)

	got, err := est.Rank(context.Background(), RankOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Beta above one is accepted; A -> C then scores 0.1 + 4.
	est, err = NewEstimator(chainGraph(t), Options{Alpha: 0.1, Beta: 2})
	require.NoError(t, err)
	got, err = est.Rank(context.Background(), RankOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A -> C", got[0].Label())
	assert.InDelta(t, 4.1, got[0].Score, 1e-12)
}

// Parameter sets used to exercise the demo web.
var demoParameterSets = []Options{
	{Alpha: 0.1, Beta: 0.5},
	{Alpha: 0.4, Beta: 0.6},
	{Alpha: 0.05, Beta: 0.95},
}

func TestEstimator_Rank_DemoGraphMatchesPairwiseStrength(t *testing.T) {
	g := demoGraph(t)
	n := g.NodeCount()
	require.Equal(t, 13, n)

	for _, opts := range demoParameterSets {
		est, err := NewEstimator(g, opts)
		require.NoError(t, err)

		got, err := est.Rank(context.Background(), RankOptions{})
		require.NoError(t, err)

		var want []Prediction
		for _, a := range g.Nodes() {
			for _, b := range g.Nodes() {
				if a == b || g.HasEdge(a, b) {
					continue
				}
				s, err := Strength(g, a, b, n, opts.Alpha, opts.Beta)
				require.NoError(t, err)
				want = append(want, Prediction{From: a, To: b, Score: s})
			}
		}
		want = RankScores(want, opts.Alpha, opts.Beta)

		require.Len(t, got, len(want), "alpha %v beta %v", opts.Alpha, opts.Beta)
		for i := range want {
			assert.Equal(t, want[i].Label(), got[i].Label())
			assert.InDelta(t, want[i].Score, got[i].Score, 1e-9)
			assert.Equal(t, i+1, got[i].Rank)
		}

		for i, p := range got {
			assert.NotEqual(t, p.From, p.To)
			assert.False(t, g.HasEdge(p.From, p.To), "%s already exists", p.Label())
			assert.Greater(t, p.Score, opts.Threshold())
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Score, p.Score)
			}
		}
	}
}

func TestEstimator_Rank_Limit(t *testing.T) {
	g := demoGraph(t)
	est, err := NewEstimator(g, Options{Alpha: 0.4, Beta: 0.6, Workers: 2})
	require.NoError(t, err)

	all, err := est.Rank(context.Background(), RankOptions{})
	require.NoError(t, err)
	require.Greater(t, len(all), 2)

	top, err := est.Rank(context.Background(), RankOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, all[:2], top)
}

func TestEstimator_Rank_Cancelled(t *testing.T) {
	est, err := NewEstimator(demoGraph(t), DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = est.Rank(ctx, RankOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreSource_KeepsOnlyPairsAboveThreshold(t *testing.T) {
	g := chainGraph(t)
	src, ok := g.IndexOf("A")
	require.True(t, ok)
	terms, err := pathTerms(context.Background(), g, src, 3, 0.5)
	require.NoError(t, err)

	// A -> B is linked, so A -> C is the only pair scored: 0.1 + 0.25.
	kept, scored := scoreSource(g, src, 0.1, terms, 0.6)
	assert.Equal(t, 1, scored)
	assert.Empty(t, kept)

	kept, scored = scoreSource(g, src, 0.1, terms, 0.3)
	assert.Equal(t, 1, scored)
	require.Len(t, kept, 1)
	assert.Equal(t, "A -> C", kept[0].Label())
	assert.InDelta(t, 0.35, kept[0].Score, 1e-12)

	// C has no successors; both missing pairs are scored and neither clears 0.
	c, _ := g.IndexOf("C")
	terms, err = pathTerms(context.Background(), g, c, 3, 0.5)
	require.NoError(t, err)
	kept, scored = scoreSource(g, c, 0, terms, 0)
	assert.Equal(t, 2, scored)
	assert.Empty(t, kept)
}
