package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. /api/v1 is protected with JWT
// when jwtSecret is non-empty; health, readiness and metrics stay public.
func SetupRoutes(router *gin.Engine, handler *Handler, jwtSecret string) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if handler.telemetry != nil {
		router.GET("/metrics", gin.WrapH(handler.telemetry.Handler()))
	}

	v1 := router.Group("/api/v1")
	if jwtSecret != "" {
		v1.Use(JWTMiddleware(jwtSecret))
	}
	{
		v1.POST("/triage", handler.TriageBatch)    // POST /api/v1/triage
		v1.POST("/runs", handler.StartRun)         // POST /api/v1/runs
		v1.GET("/runs/:id", handler.GetRun)        // GET /api/v1/runs/:id
		v1.GET("/stats", handler.GetStats)         // GET /api/v1/stats
	}
}
