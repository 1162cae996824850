package main

import (
	"call-disposition/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// All disposition endpoints require a service token; callers are the
	// dialer and the call-control layer, never end users.
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		amdGroup := v1.Group("/amd")
		{
			amdGroup.POST("/analyze", h.AnalyzeCall)
		}

		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("/:campaign_id/process", h.ProcessCampaignCall)
			campaigns.GET("/:campaign_id/analytics", h.GetCampaignAnalytics)
		}

		routingGroup := v1.Group("/routing")
		{
			routingGroup.POST("/decide", h.DecideRouting)
		}
	}
}
