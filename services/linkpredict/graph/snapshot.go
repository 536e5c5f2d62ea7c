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

import "fmt"

// Snapshot is a serialisable copy of a graph.
//
// Nodes lists every label in first-insertion order. Edges lists every edge
// grouped by source in node order. Replaying Nodes and then Edges into an
// empty graph reproduces the node order and every successor order.
type Snapshot struct {
	Nodes []string `json:"nodes" yaml:"nodes"`
	Edges []Edge   `json:"edges" yaml:"edges"`
}

// Snapshot returns an order-preserving copy of the graph contents.
func (g *Graph) Snapshot() *Snapshot {
	return &Snapshot{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
}

// FromSnapshot builds a new graph from s.
//
// Description:
//
//	Declared nodes are inserted first, then edges in order; edge endpoints
//	missing from Nodes are auto-created as usual. The returned graph is
//	still in the Building state so callers may extend it before Freeze().
//
// Errors:
//
//	Capacity errors from AddNode/AddEdge, wrapped with the failing item.
func FromSnapshot(s *Snapshot, opts ...GraphOption) (*Graph, error) {
	g := NewGraph(opts...)
	if s == nil {
		return g, nil
	}

	for _, name := range s.Nodes {
		if err := g.AddNode(name); err != nil {
			return nil, fmt.Errorf("restore node %q: %w", name, err)
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("restore edge %s: %w", e, err)
		}
	}
	return g, nil
}
