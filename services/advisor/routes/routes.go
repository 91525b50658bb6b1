// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routes wires the advisor's HTTP route table.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AtlasCounsel/CostCounsel/services/advisor/handlers"
)

// SetupRoutes registers every advisor endpoint on router.
func SetupRoutes(router *gin.Engine, deps handlers.Deps) {
	router.GET("/health", handlers.Health(deps))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/consult", handlers.Consult(deps))
		v1.GET("/sessions", handlers.ListSessions(deps))
		v1.GET("/sessions/:id/facts", handlers.SessionFacts(deps))
		v1.DELETE("/sessions/:id", handlers.DeleteSession(deps))
	}
}
