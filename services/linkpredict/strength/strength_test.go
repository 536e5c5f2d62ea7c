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
	"errors"
	"math"
	"testing"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph creates a graph from "from", "to" pairs.
func buildGraph(t *testing.T, freeze bool, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	if freeze {
		g.Freeze()
	}
	return g
}

func chainGraph(t *testing.T) *graph.Graph {
	return buildGraph(t, true, [2]string{"A", "B"}, [2]string{"B", "C"})
}

func diamondGraph(t *testing.T) *graph.Graph {
	return buildGraph(t, true,
		[2]string{"A", "B"}, [2]string{"A", "C"},
		[2]string{"B", "D"}, [2]string{"C", "D"},
	)
}

// demoGraph is a small web of Maryland-related domains.
func demoGraph(t *testing.T) *graph.Graph {
	return buildGraph(t, true,
		[2]string{"usnews.com", "umd.edu"},
		[2]string{"umd.edu", "cs.umd.edu"},
		[2]string{"thediamondback.com", "umd.edu"},
		[2]string{"thediamondback.com", "visitmaryland.org"},
		[2]string{"cs.umd.edu", "umd.edu"},
		[2]string{"en.wikipedia.org", "visitmaryland.org"},
		[2]string{"en.wikipedia.org", "baltimoresun.com"},
		[2]string{"en.wikipedia.org", "umd.edu"},
		[2]string{"en.wikipedia.org", "cs.umd.edu"},
		[2]string{"visitmaryland.org", "marylandpublicschools.org"},
		[2]string{"twitter.com", "usnews.com"},
		[2]string{"twitter.com", "thediamondback.com"},
		[2]string{"twitter.com", "baltimoresun.com"},
		[2]string{"bloomberg.com", "usnews.com"},
		[2]string{"bloomberg.com", "umd.edu"},
		[2]string{"marylandpublicschools.org", "visitmaryland.org"},
		[2]string{"news.maryland.gov", "visitmaryland.org"},
		[2]string{"news.maryland.gov", "marylandpublicschools.org"},
		[2]string{"baltimoresun.com", "usnews.com"},
		[2]string{"baltimoresun.com", "bloomberg.com"},
		[2]string{"baltimoresun.com", "thediamondback.com"},
	)
}

func TestPathCount_Chain(t *testing.T) {
	g := chainGraph(t)

	tests := []struct {
		length int
		want   int64
	}{
		{length: 0, want: 0},
		{length: 1, want: 0},
		{length: 2, want: 1},
		{length: 3, want: 0},
	}
	for _, tt := range tests {
		got, err := PathCount(g, "A", "C", tt.length)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "length %d", tt.length)
	}
}

func TestPathCount_Diamond(t *testing.T) {
	got, err := PathCount(diamondGraph(t), "A", "D", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestPathCount_BaseCase(t *testing.T) {
	g := demoGraph(t)
	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			got, err := PathCount(g, a, b, 1)
			require.NoError(t, err)
			want := int64(0)
			if g.HasEdge(a, b) {
				want = 1
			}
			assert.Equal(t, want, got, "%s -> %s", a, b)
		}
	}
}

func TestPathCount_Additivity(t *testing.T) {
	g := demoGraph(t)
	for _, a := range g.Nodes() {
		succ, err := g.Successors(a)
		require.NoError(t, err)
		for _, b := range g.Nodes() {
			for length := 2; length <= 5; length++ {
				got, err := PathCount(g, a, b, length)
				require.NoError(t, err)

				var sum int64
				for _, v := range succ {
					c, err := PathCount(g, v, b, length-1)
					require.NoError(t, err)
					sum += c
				}
				assert.Equal(t, sum, got, "%s -> %s at %d", a, b, length)
			}
		}
	}
}

func TestPathCount_CyclesRevisitNodes(t *testing.T) {
	// umd.edu <-> cs.umd.edu: one walk per even length back to the start.
	g := demoGraph(t)
	for _, length := range []int{2, 4, 10} {
		got, err := PathCount(g, "umd.edu", "umd.edu", length)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got, "length %d", length)
	}
	got, err := PathCount(g, "umd.edu", "umd.edu", 3)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestPathCount_Errors(t *testing.T) {
	g := chainGraph(t)

	_, err := PathCount(g, "A", "C", -1)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = PathCount(g, "A", "C", MaxPathLength+1)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = PathCount(g, "A", "missing", 1)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, err = PathCount(g, "missing", "A", 1)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, err = PathCount(nil, "A", "C", 1)
	assert.ErrorIs(t, err, ErrNilGraph)
}

func TestPathCount_Overflow(t *testing.T) {
	// Every node links to every node, so walks of length l number 2^(l-1).
	g := buildGraph(t, true,
		[2]string{"a", "a"}, [2]string{"a", "b"},
		[2]string{"b", "a"}, [2]string{"b", "b"},
	)

	got, err := PathCount(g, "a", "b", 63)
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<62, got)

	_, err = PathCount(g, "a", "b", 64)
	assert.ErrorIs(t, err, ErrCountOverflow)

	// Float counts keep going.
	counts, err := WalkCounts(context.Background(), g, "a", "b", 80)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(2, 79), counts[79], 1)
}

func TestWalkCounts_MatchPathCount(t *testing.T) {
	g := demoGraph(t)
	counts, err := WalkCounts(context.Background(), g, "twitter.com", "umd.edu", 8)
	require.NoError(t, err)
	require.Len(t, counts, 8)

	for i, c := range counts {
		want, err := PathCount(g, "twitter.com", "umd.edu", i+1)
		require.NoError(t, err)
		assert.Equal(t, float64(want), c, "length %d", i+1)
	}
}

func TestWalkCounts_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WalkCounts(ctx, chainGraph(t), "A", "C", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrength_Chain(t *testing.T) {
	got, err := Strength(chainGraph(t), "A", "C", 3, 0.1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, got, 1e-12)
}

func TestStrength_ZeroLengthIsAdjacencyOnly(t *testing.T) {
	g := demoGraph(t)
	got, err := Strength(g, "en.wikipedia.org", "twitter.com", 0, 0.25, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestStrength_MonotonicInBeta(t *testing.T) {
	g := demoGraph(t)
	n := g.NodeCount()
	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			prev := -1.0
			for _, beta := range []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99} {
				got, err := Strength(g, a, b, n, 0.1, beta)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, prev, "%s -> %s beta %v", a, b, beta)
				prev = got
			}
		}
	}
}

func TestStrength_Errors(t *testing.T) {
	g := chainGraph(t)

	_, err := Strength(g, "A", "C", -1, 0.1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = Strength(g, "A", "nowhere", 3, 0.1, 0.5)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestEstimator_Score(t *testing.T) {
	est, err := NewEstimator(chainGraph(t), Options{Alpha: 0.1, Beta: 0.5})
	require.NoError(t, err)

	s, err := est.Score(context.Background(), "A", "C")
	require.NoError(t, err)

	assert.Equal(t, "A", s.From)
	assert.Equal(t, "C", s.To)
	assert.Equal(t, 3, s.MaxLength, "zero max length resolves to node count")
	assert.Equal(t, []float64{0, 1, 0}, s.WalkCounts)
	assert.InDelta(t, 0.1, s.AdjacencyTerm, 1e-12)
	assert.InDelta(t, 0.25, s.PathTerm, 1e-12)
	assert.InDelta(t, 0.35, s.Value, 1e-12)
}

func TestNewEstimator_Errors(t *testing.T) {
	_, err := NewEstimator(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNilGraph)

	_, err = NewEstimator(chainGraph(t), Options{Alpha: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "beta above one is allowed", opts: Options{Alpha: 0.1, Beta: 1.5}},
		{name: "negative alpha is allowed", opts: Options{Alpha: -1}},
		{name: "nan alpha", opts: Options{Alpha: math.NaN()}, wantErr: ErrInvalidOptions},
		{name: "infinite beta", opts: Options{Beta: math.Inf(1)}, wantErr: ErrInvalidOptions},
		{name: "negative max length", opts: Options{MaxLength: -1}, wantErr: ErrInvalidLength},
		{name: "max length above cap", opts: Options{MaxLength: MaxPathLength + 1}, wantErr: ErrInvalidLength},
		{name: "negative workers", opts: Options{Workers: -2}, wantErr: ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestOptions_ResolveMaxLength(t *testing.T) {
	n, err := Options{}.resolveMaxLength(13)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	n, err = Options{MaxLength: 4}.resolveMaxLength(13)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Options{}.resolveMaxLength(MaxPathLength + 1)
	assert.ErrorIs(t, err, ErrInvalidLength)

	assert.InDelta(t, 0.6, DefaultOptions().Threshold(), 1e-12)
	assert.Greater(t, Options{}.workers(), 0)
	assert.Equal(t, 3, Options{Workers: 3}.workers())
}
