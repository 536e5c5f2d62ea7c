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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for scoring operations.
var (
	tracer = otel.Tracer("aleutian.linkpredict.strength")
	meter  = otel.Meter("aleutian.linkpredict.strength")
)

var (
	evaluationsTotal metric.Int64Counter
	rankLatency      metric.Float64Histogram
	rankCandidates   metric.Int64Histogram
	rankKept         metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		evaluationsTotal, err = meter.Int64Counter(
			"strength_evaluations_total",
			metric.WithDescription("Total number of pair strengths computed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rankLatency, err = meter.Float64Histogram(
			"strength_rank_duration_seconds",
			metric.WithDescription("Duration of full-graph ranking"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rankCandidates, err = meter.Int64Histogram(
			"strength_rank_candidates",
			metric.WithDescription("Number of missing edges scored per ranking"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rankKept, err = meter.Int64Histogram(
			"strength_rank_kept",
			metric.WithDescription("Number of predictions above threshold per ranking"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordEvaluations counts computed pair strengths.
func recordEvaluations(ctx context.Context, operation string, n int) {
	if err := initMetrics(); err != nil {
		return
	}
	evaluationsTotal.Add(ctx, int64(n),
		metric.WithAttributes(attribute.String("operation", operation)),
	)
}

// recordRankMetrics records one ranking run.
func recordRankMetrics(ctx context.Context, duration time.Duration, candidates, kept int) {
	if err := initMetrics(); err != nil {
		return
	}
	rankLatency.Record(ctx, duration.Seconds())
	rankCandidates.Record(ctx, int64(candidates))
	rankKept.Record(ctx, int64(kept))
}
