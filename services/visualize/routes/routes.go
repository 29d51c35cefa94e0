// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Aatricks/qvt-back/services/visualize/handlers"
	"github.com/Aatricks/qvt-back/services/visualize/observability"
	"github.com/Aatricks/qvt-back/services/visualize/pipeline"
)

// SetupRoutes registers the visualize API on the router.
func SetupRoutes(router *gin.Engine, p *pipeline.Pipeline, metrics *observability.Metrics) {
	router.GET("/health", handlers.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api")
	{
		api.GET("/visualize/supported-keys", handlers.SupportedKeys(p))
		api.POST("/visualize/:chartKey", handlers.Visualize(p))
	}
}
