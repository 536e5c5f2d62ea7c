// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api serves a frozen hyperlink graph and its link predictions
// over HTTP.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/strength"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ServiceVersion is the HTTP API version.
const ServiceVersion = "0.1.0"

// ErrGraphNotFrozen is returned by NewHandlers for a mutable graph.
var ErrGraphNotFrozen = errors.New("api requires a frozen graph")

// Handlers contains the HTTP handlers over one graph.
//
// Thread Safety: Safe for concurrent use; the graph is read only.
type Handlers struct {
	graph       *graph.Graph
	opts        strength.Options
	rankLimiter *rate.Limiter
}

// NewHandlers validates the inputs and returns the handlers.
//
// Inputs:
//
//	g - Frozen graph to serve.
//	opts - Default scoring options; requests may override alpha, beta and
//	       max length.
//	rankPerSecond - Sustained POST /rank rate. Bursts of the same size
//	                (at least one) are allowed.
func NewHandlers(g *graph.Graph, opts strength.Options, rankPerSecond float64) (*Handlers, error) {
	if g == nil || !g.IsFrozen() {
		return nil, ErrGraphNotFrozen
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rankPerSecond <= 0 {
		return nil, fmt.Errorf("rank rate must be positive, got %v", rankPerSecond)
	}

	burst := max(1, int(rankPerSecond))
	return &Handlers{
		graph:       g,
		opts:        opts,
		rankLimiter: rate.NewLimiter(rate.Limit(rankPerSecond), burst),
	}, nil
}

// HandleHealth handles GET /v1/linkpredict/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   ServiceVersion,
		NodeCount: h.graph.NodeCount(),
		EdgeCount: h.graph.EdgeCount(),
	})
}

// HandleGraph handles GET /v1/linkpredict/graph.
//
// Response:
//
//	200 OK: GraphResponse, nodes in insertion order with their successors
func (h *Handlers) HandleGraph(c *gin.Context) {
	names := h.graph.Nodes()
	nodes := make([]NodeView, 0, len(names))
	for _, name := range names {
		// Names come from the graph itself, so the lookup cannot fail.
		succ, _ := h.graph.Successors(name)
		nodes = append(nodes, NodeView{Name: name, Successors: succ})
	}
	c.JSON(http.StatusOK, GraphResponse{Nodes: nodes, Stats: h.graph.Stats()})
}

// HandleStrength handles GET /v1/linkpredict/strength.
//
// Query Parameters:
//
//	from, to: Node labels (required)
//	alpha, beta, max_length: Overrides for the service options (optional)
//
// Response:
//
//	200 OK: StrengthResponse
//	400 Bad Request: INVALID_REQUEST, INVALID_LENGTH
//	404 Not Found: NODE_NOT_FOUND
func (h *Handlers) HandleStrength(c *gin.Context) {
	logger := requestLogger(c, "HandleStrength")

	var req StrengthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid strength query", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
		return
	}

	opts := h.opts
	if req.Alpha != nil {
		opts.Alpha = *req.Alpha
	}
	if req.Beta != nil {
		opts.Beta = *req.Beta
	}
	if req.MaxLength != nil {
		opts.MaxLength = *req.MaxLength
	}

	est, err := strength.NewEstimator(h.graph, opts)
	if err != nil {
		writeError(c, logger, err, CodeScoreFailed)
		return
	}
	score, err := est.Score(c.Request.Context(), req.From, req.To)
	if err != nil {
		writeError(c, logger, err, CodeScoreFailed)
		return
	}

	c.JSON(http.StatusOK, StrengthResponse{
		Score:  score,
		Alpha:  opts.Alpha,
		Beta:   opts.Beta,
		Linked: h.graph.HasEdge(req.From, req.To),
	})
}

// HandlePaths handles GET /v1/linkpredict/paths.
//
// Query Parameters:
//
//	from, to: Node labels (required)
//	length: Exact walk length (required)
//	limit: Maximum walks listed, default 100, at most 1000
//
// Response:
//
//	200 OK: PathsResponse
//	400 Bad Request: INVALID_REQUEST, INVALID_LENGTH
//	404 Not Found: NODE_NOT_FOUND
//	422 Unprocessable Entity: COUNT_OVERFLOW, SEARCH_TOO_LARGE
func (h *Handlers) HandlePaths(c *gin.Context) {
	logger := requestLogger(c, "HandlePaths")

	var req PathsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid paths query", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
		return
	}
	if req.Limit == 0 {
		req.Limit = DefaultWalkLimit
	}

	length := *req.Length
	count, err := strength.PathCount(h.graph, req.From, req.To, length)
	if err != nil {
		writeError(c, logger, err, CodePathsFailed)
		return
	}
	walks, truncated, err := strength.Walks(c.Request.Context(), h.graph, req.From, req.To, length, req.Limit)
	if err != nil {
		writeError(c, logger, err, CodePathsFailed)
		return
	}

	c.JSON(http.StatusOK, PathsResponse{
		From:      req.From,
		To:        req.To,
		Length:    length,
		Count:     count,
		Walks:     walks,
		Truncated: truncated,
	})
}

// HandleRank handles POST /v1/linkpredict/rank.
//
// Request Body:
//
//	RankRequest
//
// Response:
//
//	200 OK: RankResponse
//	400 Bad Request: INVALID_REQUEST, INVALID_LENGTH
//	429 Too Many Requests: RATE_LIMITED
//	500 Internal Server Error: RANK_FAILED
func (h *Handlers) HandleRank(c *gin.Context) {
	logger := requestLogger(c, "HandleRank")

	if !h.rankLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "ranking rate limit exceeded",
			Code:  CodeRateLimited,
		})
		return
	}

	var req RankRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid request body", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: CodeInvalidRequest})
			return
		}
	}

	opts := h.opts
	if req.Alpha != nil {
		opts.Alpha = *req.Alpha
	}
	if req.Beta != nil {
		opts.Beta = *req.Beta
	}
	if req.MaxLength != nil {
		opts.MaxLength = *req.MaxLength
	}

	est, err := strength.NewEstimator(h.graph, opts)
	if err != nil {
		writeError(c, logger, err, CodeRankFailed)
		return
	}

	start := time.Now()
	preds, err := est.Rank(c.Request.Context(), strength.RankOptions{Limit: req.Limit})
	if err != nil {
		writeError(c, logger, err, CodeRankFailed)
		return
	}

	logger.Info("Ranked missing links",
		"alpha", opts.Alpha,
		"beta", opts.Beta,
		"predictions", len(preds),
		"duration", time.Since(start),
	)
	c.JSON(http.StatusOK, RankResponse{
		Alpha:       opts.Alpha,
		Beta:        opts.Beta,
		Threshold:   opts.Threshold(),
		Predictions: preds,
		DurationMs:  time.Since(start).Milliseconds(),
	})
}

// writeError maps a scoring error to a status and code.
func writeError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := http.StatusInternalServerError
	code := fallback

	switch {
	case errors.Is(err, graph.ErrNodeNotFound):
		status, code = http.StatusNotFound, CodeNodeNotFound
	case errors.Is(err, strength.ErrInvalidLength):
		status, code = http.StatusBadRequest, CodeInvalidLength
	case errors.Is(err, strength.ErrInvalidOptions):
		status, code = http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, strength.ErrCountOverflow):
		status, code = http.StatusUnprocessableEntity, CodeCountOverflow
	case errors.Is(err, strength.ErrSearchTooLarge):
		status, code = http.StatusUnprocessableEntity, CodeSearchTooLarge
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "error", err, "code", code)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// requestLogger returns a logger tagged with the request and trace IDs.
func requestLogger(c *gin.Context, handler string) *slog.Logger {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", handler)
	return telemetry.LoggerWithTrace(c.Request.Context(), logger)
}

// requestIDKey stores the request ID in the gin context.
const requestIDKey = "request_id"

// getOrCreateRequestID echoes X-Request-ID, generating one when absent.
// Repeated calls within one request return the same ID.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDKey, requestID)
	c.Header("X-Request-ID", requestID)
	return requestID
}
