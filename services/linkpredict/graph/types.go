// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	DefaultMaxEdges = 10_000_000
)

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting AddNode/AddEdge calls.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Edge is a directed hyperlink from one page to another.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// String renders the edge as "from -> to".
func (e Edge) String() string {
	return e.From + " -> " + e.To
}

// GraphOptions configures Graph limits.
type GraphOptions struct {
	// MaxNodes is the maximum number of nodes the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of edges the graph can hold.
	// Default: 10,000,000
	MaxEdges int
}

// DefaultGraphOptions returns sensible defaults for graph configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// GraphOption is a functional option for configuring Graph.
type GraphOption func(*GraphOptions)

// WithMaxNodes sets the maximum number of nodes the graph can hold.
// Values <= 0 keep the default.
func WithMaxNodes(n int) GraphOption {
	return func(o *GraphOptions) {
		if n > 0 {
			o.MaxNodes = n
		}
	}
}

// WithMaxEdges sets the maximum number of edges the graph can hold.
// Values <= 0 keep the default.
func WithMaxEdges(n int) GraphOption {
	return func(o *GraphOptions) {
		if n > 0 {
			o.MaxEdges = n
		}
	}
}

// edgeKey identifies an edge by dense node indexes.
type edgeKey struct {
	from, to int
}

// Graph is a directed hyperlink graph.
//
// Nodes are addressed by label externally and by a dense index internally.
// The index of a node is its position in first-insertion order and never
// changes, because nodes are never removed.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. After Freeze()
//	is called, the graph can be safely read from multiple goroutines.
type Graph struct {
	// names holds node labels in first-insertion order.
	names []string

	// index maps a label to its position in names.
	index map[string]int

	// succ holds, per node index, the successor indexes in edge insertion order.
	succ [][]int

	// edgeSet gives O(1) HasEdge and the no-parallel-edge guarantee.
	edgeSet map[edgeKey]struct{}

	// edgeCount is the running total; always equals len(edgeSet).
	edgeCount int

	state   GraphState
	options GraphOptions

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze() was called.
	// Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// NewGraph creates a new empty graph in the Building state.
//
// Example:
//
//	g := NewGraph()
//	_ = g.AddEdge("twitter.com", "usnews.com")
//	g.Freeze()
func NewGraph(opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		names:   make([]string, 0),
		index:   make(map[string]int),
		succ:    make([][]int, 0),
		edgeSet: make(map[edgeKey]struct{}),
		state:   GraphStateBuilding,
		options: options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// Freeze transitions the graph to read-only mode.
//
// After calling Freeze(), AddNode and AddEdge return ErrGraphFrozen. The
// operation is irreversible and idempotent. Scoring many pairs concurrently
// requires a frozen graph.
func (g *Graph) Freeze() {
	if g.state == GraphStateReadOnly {
		return
	}
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()

	recordFreezeMetrics(context.Background(), len(g.names), g.edgeCount)
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.names)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// AddNode inserts a node if it is absent.
//
// Description:
//
//	Adding a label that already exists is a no-op, not a failure; the node
//	count only grows on an actual insertion.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrMaxNodesExceeded - Graph is at node capacity
func (g *Graph) AddNode(name string) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	_, err := g.ensureNode(name)
	return err
}

// ensureNode returns the index of name, inserting it if needed.
func (g *Graph) ensureNode(name string) (int, error) {
	if idx, ok := g.index[name]; ok {
		return idx, nil
	}
	if len(g.names) >= g.options.MaxNodes {
		return -1, fmt.Errorf("%w: %s", ErrMaxNodesExceeded, name)
	}

	idx := len(g.names)
	g.names = append(g.names, name)
	g.succ = append(g.succ, nil)
	g.index[name] = idx
	return idx, nil
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// AddEdge adds the directed edge from -> to.
//
// Description:
//
//	No-op if the edge already exists. Otherwise missing endpoints are
//	inserted as nodes (from first, then to), to is appended to from's
//	successor list and the edge count grows by exactly one. A failed call
//	leaves the graph unchanged.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrMaxNodesExceeded - An endpoint would exceed node capacity
//	ErrMaxEdgesExceeded - Graph is at edge capacity
func (g *Graph) AddEdge(from, to string) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if g.HasEdge(from, to) {
		return nil
	}
	if g.edgeCount >= g.options.MaxEdges {
		return fmt.Errorf("%w: %s -> %s", ErrMaxEdgesExceeded, from, to)
	}

	// Both endpoints must fit before either is inserted.
	missing := 0
	if !g.HasNode(from) {
		missing++
	}
	if from != to && !g.HasNode(to) {
		missing++
	}
	if len(g.names)+missing > g.options.MaxNodes {
		return fmt.Errorf("%w: %s -> %s", ErrMaxNodesExceeded, from, to)
	}

	fromIdx, err := g.ensureNode(from)
	if err != nil {
		return err
	}
	toIdx, err := g.ensureNode(to)
	if err != nil {
		return err
	}

	g.succ[fromIdx] = append(g.succ[fromIdx], toIdx)
	g.edgeSet[edgeKey{from: fromIdx, to: toIdx}] = struct{}{}
	g.edgeCount++
	return nil
}

// HasEdge reports whether the edge from -> to exists. It is false when
// either endpoint is absent.
func (g *Graph) HasEdge(from, to string) bool {
	fromIdx, ok := g.index[from]
	if !ok {
		return false
	}
	toIdx, ok := g.index[to]
	if !ok {
		return false
	}
	_, exists := g.edgeSet[edgeKey{from: fromIdx, to: toIdx}]
	return exists
}

// Nodes returns all node labels in first-insertion order.
//
// The result is a copy; mutating it does not affect the graph.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Successors returns the direct out-neighbors of name in insertion order.
//
// The result is a copy. Returns ErrNodeNotFound if name is not in the graph.
func (g *Graph) Successors(name string) ([]string, error) {
	idx, ok := g.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}

	out := make([]string, len(g.succ[idx]))
	for i, j := range g.succ[idx] {
		out[i] = g.names[j]
	}
	return out, nil
}

// OutDegree returns the number of direct successors of name.
//
// Returns ErrNodeNotFound if name is not in the graph.
func (g *Graph) OutDegree(name string) (int, error) {
	idx, ok := g.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return len(g.succ[idx]), nil
}

// Edges returns every edge, grouped by source node in node order and in
// successor order within a source.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edgeCount)
	for i, targets := range g.succ {
		for _, j := range targets {
			out = append(out, Edge{From: g.names[i], To: g.names[j]})
		}
	}
	return out
}

// IndexOf returns the dense index of name.
//
// Indexes are positions in Nodes() order and are stable for the lifetime
// of the graph. Used by scoring code that walks the graph many times.
func (g *Graph) IndexOf(name string) (int, bool) {
	idx, ok := g.index[name]
	return idx, ok
}

// NameAt returns the label of the node at index i.
//
// Panics if i is out of range, like a slice index.
func (g *Graph) NameAt(i int) string {
	return g.names[i]
}

// OutDegreeAt returns the out-degree of the node at index i.
func (g *Graph) OutDegreeAt(i int) int {
	return len(g.succ[i])
}

// SuccessorsAt returns an iterator over the successor indexes of node i in
// insertion order. No internal slice is exposed.
//
// Example:
//
//	for j := range g.SuccessorsAt(i) {
//	    fmt.Println(g.NameAt(j))
//	}
func (g *Graph) SuccessorsAt(i int) iter.Seq[int] {
	targets := g.succ[i]
	return func(yield func(int) bool) {
		for _, j := range targets {
			if !yield(j) {
				return
			}
		}
	}
}

// GraphStats contains statistics about the graph.
//
// Thread Safety: GraphStats is a value type with no internal state.
type GraphStats struct {
	NodeCount    int    `json:"node_count"`
	EdgeCount    int    `json:"edge_count"`
	MaxOutDegree int    `json:"max_out_degree"`
	SinkCount    int    `json:"sink_count"`
	State        string `json:"state"`
	BuiltAtMilli int64  `json:"built_at_milli,omitempty"`
}

// Stats returns statistics about the graph.
//
// A sink is a node with no outgoing edges.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		NodeCount:    len(g.names),
		EdgeCount:    g.edgeCount,
		State:        g.state.String(),
		BuiltAtMilli: g.BuiltAtMilli,
	}
	for _, targets := range g.succ {
		if len(targets) == 0 {
			stats.SinkCount++
		}
		if len(targets) > stats.MaxOutDegree {
			stats.MaxOutDegree = len(targets)
		}
	}
	return stats
}
