// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the hyperlink graph store.
//
// The graph package models web pages as nodes identified by an opaque label
// (usually a domain name) and hyperlinks as directed, unweighted edges. It
// only answers existence and adjacency questions; it assigns no meaning to
// longer paths. Path counting and scoring live in the strength package.
//
// # Ordering
//
// Nodes are kept in first-insertion order. Each node keeps its direct
// successors in the order the edges were added. Both orders are observable
// through Nodes, Successors and Snapshot, and are preserved by snapshot
// round trips.
//
// # Ownership Model
//
// The graph exclusively owns its node list and adjacency lists. Every query
// that returns a slice returns a fresh copy, so callers can never corrupt
// internal state by mutating a result.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed for:
//   - Single-writer access during build phase (AddNode, AddEdge calls)
//   - Read-only access after Freeze() is called
//
// After Freeze(), the graph can be safely read from multiple goroutines.
//
// # Lifecycle
//
//  1. Create with NewGraph()
//  2. Build with AddNode() and AddEdge() calls
//  3. Call Freeze() to finalize
//  4. Query and score
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned by adjacency queries on a label that is
	// not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured maximum node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the graph has reached its
	// configured maximum edge capacity.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")
)
