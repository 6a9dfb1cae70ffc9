package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/service"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// HandleWebhook handles POST /v1/payments/webhook?provider=stripe|paypal.
// Recognized deliveries are always acknowledged with 200 so the
// provider does not retry events we have already made a decision on.
func HandleWebhook(webhooks *service.WebhookService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		provider := c.Query("provider")
		switch provider {
		case "stripe":
			err = webhooks.HandleStripeEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		case "paypal":
			err = webhooks.HandlePayPalEvent(c.Request.Context(), payload)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
			return
		}

		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
				return
			}
			// Internal failures get a 500 so the provider redelivers
			logger.Error("Webhook processing failed",
				zap.String("provider", provider),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
