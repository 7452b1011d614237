package http

import (
	"github.com/beerlens/backend/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	v1.Use(SessionMiddleware(cfg.Session.TTL, cfg.Server.Environment == "production"))
	{
		// Selection endpoints
		selection := v1.Group("/selection")
		{
			selection.GET("", handler.ListSelection)
			selection.POST("", handler.AddSelection)
			selection.DELETE("", handler.ClearSelection)
			// Keys are display names and may contain "/"
			selection.DELETE("/*key", handler.RemoveSelection)
		}

		v1.POST("/compare", handler.Compare)
	}

	return router
}
