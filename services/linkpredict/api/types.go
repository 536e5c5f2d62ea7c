// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/strength"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidLength  = "INVALID_LENGTH"
	CodeNodeNotFound   = "NODE_NOT_FOUND"
	CodeCountOverflow  = "COUNT_OVERFLOW"
	CodeSearchTooLarge = "SEARCH_TOO_LARGE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeScoreFailed    = "SCORE_FAILED"
	CodePathsFailed    = "PATHS_FAILED"
	CodeRankFailed     = "RANK_FAILED"
)

// Walk enumeration limits for GET /paths.
const (
	DefaultWalkLimit = 100
	MaxWalkLimit     = 1000
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the machine-readable error code.
	Code string `json:"code,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// NodeView is one node with its outgoing links.
type NodeView struct {
	Name       string   `json:"name"`
	Successors []string `json:"successors"`
}

// GraphResponse is returned by GET /graph.
type GraphResponse struct {
	Nodes []NodeView       `json:"nodes"`
	Stats graph.GraphStats `json:"stats"`
}

// StrengthRequest is the query of GET /strength. Unset parameters fall
// back to the service options.
type StrengthRequest struct {
	From      string   `form:"from" binding:"required"`
	To        string   `form:"to" binding:"required"`
	Alpha     *float64 `form:"alpha"`
	Beta      *float64 `form:"beta"`
	MaxLength *int     `form:"max_length"`
}

// StrengthResponse is returned by GET /strength.
type StrengthResponse struct {
	strength.Score
	Alpha  float64 `json:"alpha"`
	Beta   float64 `json:"beta"`
	Linked bool    `json:"linked"`
}

// PathsRequest is the query of GET /paths.
type PathsRequest struct {
	From   string `form:"from" binding:"required"`
	To     string `form:"to" binding:"required"`
	Length *int   `form:"length" binding:"required"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// PathsResponse is returned by GET /paths.
type PathsResponse struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Length    int        `json:"length"`
	Count     int64      `json:"count"`
	Walks     [][]string `json:"walks"`
	Truncated bool       `json:"truncated"`
}

// RankRequest is the body of POST /rank. Every field is optional.
type RankRequest struct {
	Alpha     *float64 `json:"alpha"`
	Beta      *float64 `json:"beta"`
	MaxLength *int     `json:"max_length"`
	Limit     int      `json:"limit" binding:"gte=0"`
}

// RankResponse is returned by POST /rank.
type RankResponse struct {
	Alpha       float64               `json:"alpha"`
	Beta        float64               `json:"beta"`
	Threshold   float64               `json:"threshold"`
	Predictions []strength.Prediction `json:"predictions"`
	DurationMs  int64                 `json:"duration_ms"`
}
