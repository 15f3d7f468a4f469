// Package router wires the HTTP surface: middleware, operational endpoints
// and the versioned API group each module registers its routes on.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openmes/batch-record-api/internal/approval"
	"github.com/openmes/batch-record-api/internal/batchrecord"
	"github.com/openmes/batch-record-api/internal/section"
	"github.com/openmes/batch-record-api/internal/signature"
	"github.com/openmes/batch-record-api/internal/system/config"
	"github.com/openmes/batch-record-api/internal/system/constants"
	"github.com/openmes/batch-record-api/internal/system/database"
	"github.com/openmes/batch-record-api/internal/system/metrics"
	"github.com/openmes/batch-record-api/internal/system/middleware"
	"github.com/openmes/batch-record-api/internal/system/stores"
	"github.com/openmes/batch-record-api/internal/template"
)

// SetupRouter configures all API routes
func SetupRouter(cfg *config.Config, registry *stores.StoreRegistry, db *database.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.ActorMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS))
	router.Use(requestDurationMiddleware())

	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group(constants.APIBasePath)
	{
		template.Initialize(v1, registry)
		batchrecord.Initialize(v1, registry)
		section.Initialize(v1, registry)
		approval.Initialize(v1, registry)
		signature.Initialize(v1, registry)
	}

	return router
}

// requestDurationMiddleware observes handler latency per route and method.
func requestDurationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.Get().RequestDuration.
			WithLabelValues(route, c.Request.Method).
			Observe(time.Since(start).Seconds())
	}
}
