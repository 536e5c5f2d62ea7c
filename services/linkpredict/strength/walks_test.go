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
	"fmt"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalks_Diamond(t *testing.T) {
	walks, truncated, err := Walks(context.Background(), diamondGraph(t), "A", "D", 2, 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, [][]string{
		{"A", "B", "D"},
		{"A", "C", "D"},
	}, walks)
}

func TestWalks_CountMatchesPathCount(t *testing.T) {
	g := demoGraph(t)
	ctx := context.Background()

	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			for length := 0; length <= 6; length++ {
				walks, truncated, err := Walks(ctx, g, a, b, length, 0)
				require.NoError(t, err)
				require.False(t, truncated)

				want, err := PathCount(g, a, b, length)
				require.NoError(t, err)
				require.Equal(t, int(want), len(walks), "%s -> %s at %d", a, b, length)

				for _, w := range walks {
					require.Len(t, w, length+1)
					assert.Equal(t, a, w[0])
					assert.Equal(t, b, w[len(w)-1])
					for i := 1; i < len(w); i++ {
						assert.True(t, g.HasEdge(w[i-1], w[i]), "walk %v uses a missing edge", w)
					}
				}
			}
		}
	}
}

func TestWalks_Limit(t *testing.T) {
	g := buildGraph(t, true,
		[2]string{"a", "a"}, [2]string{"a", "b"},
		[2]string{"b", "a"}, [2]string{"b", "b"},
	)

	walks, truncated, err := Walks(context.Background(), g, "a", "b", 4, 3)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, walks, 3)
	assert.Equal(t, []string{"a", "a", "a", "a", "b"}, walks[0])

	// Exactly 2^3 walks exist; a limit equal to the count is not a truncation.
	walks, truncated, err = Walks(context.Background(), g, "a", "b", 4, 8)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, walks, 8)
}

func TestWalks_Errors(t *testing.T) {
	g := chainGraph(t)
	ctx := context.Background()

	_, _, err := Walks(ctx, g, "A", "C", -3, 0)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, _, err = Walks(ctx, g, "A", "Z", 2, 0)
	assert.Error(t, err)

	walks, truncated, err := Walks(ctx, g, "A", "C", 0, 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Empty(t, walks)
}

// completeGraph links every ordered pair of x, y and z, self loops included.
func completeGraph(t *testing.T, extra ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	for _, from := range []string{"x", "y", "z"} {
		for _, to := range []string{"x", "y", "z"} {
			require.NoError(t, g.AddEdge(from, to))
		}
	}
	for _, e := range extra {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	require.NoError(t, g.AddNode("t"))
	g.Freeze()
	return g
}

func TestWalks_UnreachableTargetReturnsAtOnce(t *testing.T) {
	g := completeGraph(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	walks, truncated, err := Walks(ctx, g, "x", "t", 40, 100)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Empty(t, walks)
}

func TestWalks_DenseGraphStopsAtLimit(t *testing.T) {
	// 3^38 walks of length 40 end at t, all entering through z.
	g := completeGraph(t, [2]string{"z", "t"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	walks, truncated, err := Walks(ctx, g, "x", "t", 40, 5)
	require.NoError(t, err)
	assert.True(t, truncated)
	require.Len(t, walks, 5)
	for _, w := range walks {
		require.Len(t, w, 41)
		assert.Equal(t, "z", w[39])
		assert.Equal(t, "t", w[40])
	}
	assert.Equal(t, []string{"x", "x"}, walks[0][:2])
}

func TestWalks_LongCycle(t *testing.T) {
	g := buildGraph(t, true,
		[2]string{"x", "y"}, [2]string{"y", "z"}, [2]string{"z", "x"},
		[2]string{"x", "dead"},
	)

	walks, truncated, err := Walks(context.Background(), g, "x", "x", 3000, 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, walks, 1)
	assert.Len(t, walks[0], 3001)

	walks, _, err = Walks(context.Background(), g, "x", "x", 3001, 0)
	require.NoError(t, err)
	assert.Empty(t, walks)
}

func TestWalks_SearchTooLarge(t *testing.T) {
	g := graph.NewGraph()
	for i := range 64*64 + 1 {
		require.NoError(t, g.AddEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1)))
	}
	g.Freeze()

	_, _, err := Walks(context.Background(), g, "n0", "n1", MaxPathLength, 0)
	assert.ErrorIs(t, err, ErrSearchTooLarge)
}

func TestWalks_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Walks(ctx, demoGraph(t), "twitter.com", "umd.edu", 6, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
