package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter mounts the chart API. hub may be nil.
func NewRouter(mode string, charts *ChartHandler, hub *SSEHub) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if mode != gin.TestMode {
		router.Use(gin.Logger())
	}

	router.GET("/healthz", charts.HandleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/charts", charts.HandleRunPipeline)
		v1.POST("/axis", charts.HandleResolveAxis)
		if hub != nil {
			v1.GET("/events", hub.HandleSSE)
		}
	}
	return router
}
