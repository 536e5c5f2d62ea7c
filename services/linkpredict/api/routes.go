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
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RegisterRoutes registers the link prediction routes under rg.
//
// Endpoints:
//
//	GET  /linkpredict/health   - Liveness and graph size
//	GET  /linkpredict/graph    - Nodes with their successors
//	GET  /linkpredict/strength - Strength of one ordered pair
//	GET  /linkpredict/paths    - Walk count and walks of one length
//	POST /linkpredict/rank     - Ranked predictions for every missing link
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	lp := rg.Group("/linkpredict")
	{
		lp.GET("/health", handlers.HandleHealth)
		lp.GET("/graph", handlers.HandleGraph)
		lp.GET("/strength", handlers.HandleStrength)
		lp.GET("/paths", handlers.HandlePaths)
		lp.POST("/rank", handlers.HandleRank)
	}
}

// NewRouter builds the gin engine for "serve".
//
// Every request gets an X-Request-ID and an otel server span. When
// metrics is non-nil it is mounted at /metrics. Extra middleware runs after
// the request ID is assigned.
func NewRouter(handlers *Handlers, serviceName string, metrics http.Handler, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(func(c *gin.Context) {
		getOrCreateRequestID(c)
		c.Next()
	})
	router.Use(middleware...)

	RegisterRoutes(router.Group("/v1"), handlers)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
	return router
}
