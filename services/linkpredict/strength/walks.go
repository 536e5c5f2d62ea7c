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
	"math"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
)

// cancelCheckInterval is how many worklist pops happen between context checks.
const cancelCheckInterval = 1024

// walkCount is the numeric type a frontier carries.
type walkCount interface {
	~int64 | ~float64
}

// addInt64 adds two non-negative counts, failing on overflow.
func addInt64(x, y int64) (int64, error) {
	if x > math.MaxInt64-y {
		return 0, ErrCountOverflow
	}
	return x + y, nil
}

// addFloat64 adds two counts. Float counts saturate to +Inf instead of failing.
func addFloat64(x, y float64) (float64, error) {
	return x + y, nil
}

// expand runs the frontier expansion from src for depths 1..maxLength.
//
// Description:
//
//	counts[v] at depth d is the number of walks of exactly d edges from src
//	to v. visit is called once per depth, in increasing order, with a slice
//	it must not retain. Expansion stops early once the frontier is empty,
//	because every deeper count is then zero.
//
// Thread Safety: Safe for concurrent use on a frozen graph.
func expand[T walkCount](
	ctx context.Context,
	g *graph.Graph,
	src, maxLength int,
	add func(x, y T) (T, error),
	visit func(depth int, counts []T),
) error {
	n := g.NodeCount()
	cur := make([]T, n)
	next := make([]T, n)
	cur[src] = 1

	for depth := 1; depth <= maxLength; depth++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		clear(next)
		live := false
		for v, c := range cur {
			if c == 0 {
				continue
			}
			for w := range g.SuccessorsAt(v) {
				sum, err := add(next[w], c)
				if err != nil {
					return fmt.Errorf("%w: at length %d", err, depth)
				}
				next[w] = sum
				live = true
			}
		}
		if !live {
			return nil
		}

		cur, next = next, cur
		visit(depth, cur)
	}
	return nil
}

// resolvePair maps both labels to graph indexes.
func resolvePair(g *graph.Graph, a, b string) (int, int, error) {
	if g == nil {
		return 0, 0, ErrNilGraph
	}
	ai, ok := g.IndexOf(a)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, a)
	}
	bi, ok := g.IndexOf(b)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, b)
	}
	return ai, bi, nil
}

// checkLength validates a single walk length.
func checkLength(length int) error {
	if length < 0 || length > MaxPathLength {
		return fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	return nil
}

// PathCount returns the number of directed walks of exactly length edges
// from a to b.
//
// Description:
//
//	Nodes may repeat within a walk and each distinct walk counts once.
//	A length of 0 always yields 0: walks are seeded at depth 1.
//
// Errors:
//
//	graph.ErrNodeNotFound - a or b is not in the graph
//	ErrInvalidLength - length is negative or above MaxPathLength
//	ErrCountOverflow - the exact count does not fit in an int64
//
// Complexity: O(length × (V + E)).
func PathCount(g *graph.Graph, a, b string, length int) (int64, error) {
	if err := checkLength(length); err != nil {
		return 0, err
	}
	ai, bi, err := resolvePair(g, a, b)
	if err != nil {
		return 0, err
	}

	var total int64
	err = expand(context.Background(), g, ai, length, addInt64, func(depth int, counts []int64) {
		if depth == length {
			total = counts[bi]
		}
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// WalkCounts returns the walk counts from a to b for every length in
// 1..maxLength; element i holds the count for length i+1.
//
// Counts are float64 so that long walks on dense graphs degrade in
// precision rather than overflow.
func WalkCounts(ctx context.Context, g *graph.Graph, a, b string, maxLength int) ([]float64, error) {
	if err := checkLength(maxLength); err != nil {
		return nil, err
	}
	ai, bi, err := resolvePair(g, a, b)
	if err != nil {
		return nil, err
	}

	out := make([]float64, maxLength)
	err = expand(ctx, g, ai, maxLength, addFloat64, func(depth int, counts []float64) {
		out[depth-1] = counts[bi]
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// maxReachBits bounds the reachability table Walks builds, in bits.
const maxReachBits = 1 << 28

// reachTable returns one bitset row per remaining length k in 0..rows-1.
// Bit v of row k is set when v reaches target in exactly k edges.
//
// Complexity: O(rows × (V + E)) time, rows × V bits.
func reachTable(ctx context.Context, g *graph.Graph, target, rows int) ([]uint64, int, error) {
	n := g.NodeCount()
	words := (n + 63) / 64
	if words > maxReachBits/64/rows {
		return nil, 0, fmt.Errorf("%w: %d nodes at length %d", ErrSearchTooLarge, n, rows)
	}

	table := make([]uint64, rows*words)
	table[target/64] |= uint64(1) << (target % 64)
	for k := 1; k < rows; k++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		prev := table[(k-1)*words : k*words]
		cur := table[k*words : (k+1)*words]
		live := false
		for v := range n {
			for w := range g.SuccessorsAt(v) {
				if prev[w/64]&(uint64(1)<<(w%64)) != 0 {
					cur[v/64] |= uint64(1) << (v % 64)
					live = true
					break
				}
			}
		}
		// Every longer row is empty too.
		if !live {
			break
		}
	}
	return table, words, nil
}

// Walks enumerates the concrete walks of exactly length edges from a to b.
//
// Description:
//
//	Uses a depth-first search driven by an explicit worklist, so the call
//	stack does not grow with length. Walks are returned in the order a
//	recursive search over successors in insertion order would find them.
//	At most limit walks are returned (0 means no limit); truncated reports
//	whether more exist.
//
//	A reachability table built up front keeps only successors that can
//	still reach b in the remaining steps, so every prefix on the worklist
//	completes to at least one walk. The search costs O(length × (V + E))
//	plus O(limit × length × outdeg), and returns at once when no walk exists.
//
// Inputs:
//
//	ctx - Checked while building the table and periodically during the search.
//
// Outputs:
//
//	[][]string - Each walk as length+1 labels, starting at a, ending at b.
//	bool - True if the result was cut at limit.
//	error - Lookup, length or context errors.
//
// Errors:
//
//	ErrSearchTooLarge - length × V exceeds the reachability table budget
func Walks(ctx context.Context, g *graph.Graph, a, b string, length, limit int) ([][]string, bool, error) {
	if err := checkLength(length); err != nil {
		return nil, false, err
	}
	ai, bi, err := resolvePair(g, a, b)
	if err != nil {
		return nil, false, err
	}

	walks := make([][]string, 0)
	if length == 0 {
		return walks, false, nil
	}

	table, words, err := reachTable(ctx, g, bi, length)
	if err != nil {
		return nil, false, err
	}
	reaches := func(remaining, v int) bool {
		return table[remaining*words+v/64]&(uint64(1)<<(v%64)) != 0
	}

	type item struct {
		node  int
		depth int
	}

	path := make([]int, 1, length+1)
	path[0] = ai
	stack := make([]item, 0)
	buf := make([]int, 0)

	pushSuccessors := func(v, depth int) {
		buf = buf[:0]
		for w := range g.SuccessorsAt(v) {
			if reaches(length-depth, w) {
				buf = append(buf, w)
			}
		}
		// Reverse so the first successor is popped first.
		for i := len(buf) - 1; i >= 0; i-- {
			stack = append(stack, item{node: buf[i], depth: depth})
		}
	}
	pushSuccessors(ai, 1)

	pops := 0
	for len(stack) > 0 {
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Every item deeper than top.depth belongs to an already finished subtree.
		path = append(path[:top.depth], top.node)

		if top.depth == length {
			walk := make([]string, len(path))
			for i, idx := range path {
				walk[i] = g.NameAt(idx)
			}
			walks = append(walks, walk)
			if limit > 0 && len(walks) == limit {
				// Anything left on the worklist completes to another walk.
				return walks, len(stack) > 0, nil
			}
			continue
		}
		pushSuccessors(top.node, top.depth+1)
	}
	return walks, false, nil
}
