package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/config"
	"github.com/jengzang/reallocation-screener/internal/handler"
	"github.com/jengzang/reallocation-screener/internal/middleware"
	"github.com/jengzang/reallocation-screener/internal/service"
)

// Services bundles what the router exposes
type Services struct {
	Screening   *service.ScreeningService
	Integration *service.IntegrationService
	Gatherer    prometheus.Gatherer
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+middleware.RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Reallocation screener is running",
		})
	})

	gatherer := svc.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	screeningHandler := handler.NewScreeningHandler(svc.Screening, cfg.Upload.MaxBytes, logger)
	adminHandler := handler.NewAdminHandler(svc.Screening, svc.Integration, logger)
	auth := middleware.NewAuthorizer(cfg.JWTSecret, cfg.Integration.AdminRoles)
	limiter := middleware.NewRateLimiter(cfg.AdminLimit.Requests, cfg.AdminLimit.Window)

	// API 路由组
	api := r.Group("/api/v1")
	{
		screening := api.Group("/screening")
		{
			screening.GET("/options", screeningHandler.GetOptions)
			screening.POST("/view", screeningHandler.PostView)
			screening.POST("/map", screeningHandler.PostMap)
			screening.GET("/export", screeningHandler.GetExport)
			screening.POST("/export", screeningHandler.PostExport)
			screening.POST("/highlight", screeningHandler.PostHighlight)
		}

		admin := api.Group("/admin", middleware.RateLimit(limiter, logger), middleware.RequireAdmin(auth, logger))
		{
			admin.POST("/reload", adminHandler.Reload)
			admin.POST("/integrations", adminHandler.CreateIntegration)
		}
	}

	return r
}
