// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/api"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds in-flight requests and telemetry flushing on exit.
const shutdownTimeout = 10 * time.Second

// serveCmd serves the HTTP API over the loaded graph.
func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the link prediction HTTP API",
		Long: `Load and freeze the graph, then serve it under /v1/linkpredict.

Endpoints:
  GET  /v1/linkpredict/health
  GET  /v1/linkpredict/graph
  GET  /v1/linkpredict/strength?from=A&to=B
  GET  /v1/linkpredict/paths?from=A&to=B&length=3
  POST /v1/linkpredict/rank
  GET  /metrics (with telemetry.metric_exporter: prometheus)`,
		Example: `  linkpredict serve --edges web.yaml --port 8080
  linkpredict serve --snapshot maryland --debug`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().Int("port", 0, "Port to listen on (0 = server.port)")
	cmd.Flags().Bool("debug", false, "Enable gin debug mode and request logging")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	port := a.cfg.Server.Port
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		port = p
	}
	debug, _ := cmd.Flags().GetBool("debug")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.DefaultConfig()
	telCfg.ServiceVersion = api.ServiceVersion
	telCfg.TraceExporter = a.cfg.Telemetry.TraceExporter
	telCfg.MetricExporter = a.cfg.Telemetry.MetricExporter
	if a.cfg.Telemetry.OTLPEndpoint != "" {
		telCfg.OTLPEndpoint = a.cfg.Telemetry.OTLPEndpoint
	}
	shutdownTelemetry, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	g, err := a.loadGraph(ctx)
	if err != nil {
		return err
	}
	handlers, err := api.NewHandlers(g, a.cfg.ScoringOptions(), a.cfg.Server.RankRatePerSecond)
	if err != nil {
		return err
	}

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	var middleware []gin.HandlerFunc
	if debug {
		middleware = append(middleware, gin.Logger())
	}
	router := api.NewRouter(handlers, telCfg.ServiceName, telemetry.MetricsHandler(), middleware...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting link prediction server",
			slog.String("address", srv.Addr),
			slog.Int("nodes", g.NodeCount()),
			slog.Int("edges", g.EdgeCount()),
		)
		errCh <- srv.ListenAndServe()
	}()
	metricsLine := "Metrics: off"
	if telemetry.MetricsHandler() != nil {
		metricsLine = fmt.Sprintf("Metrics: http://localhost:%d/metrics", port)
	}
	a.out.Box("Link prediction server",
		fmt.Sprintf("API:     http://localhost:%d/v1/linkpredict", port),
		fmt.Sprintf("Graph:   %d pages, %d links", g.NodeCount(), g.EdgeCount()),
		fmt.Sprintf("Scoring: alpha = %v, beta = %v", a.cfg.Scoring.Alpha, a.cfg.Scoring.Beta),
		metricsLine,
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down link prediction server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
