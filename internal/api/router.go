package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/api/handlers"
	"github.com/nexusshop/orderapi/internal/api/middleware"
	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/internal/service"
)

// Services bundles the service layer for route wiring
type Services struct {
	Payments    *service.PaymentService
	Webhooks    *service.WebhookService
	Fulfillment *service.FulfillmentService
	Affiliates  *service.AffiliateService
	Emails      *service.EmailService
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, services *Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Provider callbacks authenticate via webhook signature, not API key
		v1.POST("/payments/webhook", handlers.HandleWebhook(services.Webhooks, logger))

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(repos, logger))
		{
			authed.POST("/payments/session", handlers.HandleCreateSession(services.Payments, logger))
			authed.POST("/orders/:id/fulfill", handlers.HandleFulfillOrder(services.Fulfillment, logger))
			authed.POST("/affiliates/convert", handlers.HandleConvert(services.Affiliates, logger))
			authed.POST("/emails/send", handlers.HandleSendEmail(services.Emails, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
