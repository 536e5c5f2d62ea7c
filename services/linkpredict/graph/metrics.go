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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("aleutian.linkpredict.graph")

// Metrics for graph construction.
var (
	frozenNodes  metric.Int64Histogram
	frozenEdges  metric.Int64Histogram
	freezesTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		frozenNodes, err = meter.Int64Histogram(
			"graph_build_nodes",
			metric.WithDescription("Number of nodes in a graph at freeze time"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		frozenEdges, err = meter.Int64Histogram(
			"graph_build_edges",
			metric.WithDescription("Number of edges in a graph at freeze time"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		freezesTotal, err = meter.Int64Counter(
			"graph_freeze_total",
			metric.WithDescription("Total number of graphs frozen"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordFreezeMetrics records the size of a graph as it is frozen.
func recordFreezeMetrics(ctx context.Context, nodeCount, edgeCount int) {
	if err := initMetrics(); err != nil {
		return
	}

	frozenNodes.Record(ctx, int64(nodeCount))
	frozenEdges.Record(ctx, int64(edgeCount))
	freezesTotal.Add(ctx, 1)
}
