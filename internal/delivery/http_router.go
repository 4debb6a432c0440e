package delivery

import (
	"time"

	"jobclicks/internal/delivery/middleware"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type HTTPRouter struct {
	handlers       *HTTPHandlers
	logger         *logger.Logger
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	handlerTimeout time.Duration
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics, gatherer prometheus.Gatherer, handlerTimeout time.Duration) *HTTPRouter {
	return &HTTPRouter{
		handlers:       handlers,
		logger:         logger,
		metrics:        metrics,
		gatherer:       gatherer,
		handlerTimeout: handlerTimeout,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(r.handlerTimeout))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		// Dashboard session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", r.handlers.CreateSession)
			sessions.DELETE("/:id", r.handlers.DeleteSession)
			sessions.GET("/:id/dashboard", r.handlers.GetDashboard)
			sessions.PUT("/:id/range", r.handlers.SelectRange)
			sessions.POST("/:id/custom-range", r.handlers.ApplyCustomRange)
			sessions.DELETE("/:id/custom-range", r.handlers.ClearCustomRange)
			sessions.POST("/:id/refresh", r.handlers.Refresh)
			sessions.POST("/:id/export", r.handlers.ExportTopPerformers)
		}

		// Comparison endpoints
		comparison := v1.Group("/comparison")
		{
			comparison.GET("/weekly", r.handlers.CompareWeeks)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler(r.gatherer))

	return router
}
