package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/service"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// CreateSessionRequest is the POST /v1/payments/session payload
type CreateSessionRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	Provider  string `json:"provider" binding:"required"`
	ReturnURL string `json:"return_url"`
}

// CreateSessionResponse carries the checkout redirect
type CreateSessionResponse struct {
	Success       bool   `json:"success"`
	CheckoutURL   string `json:"checkout_url"`
	SessionID     string `json:"session_id,omitempty"`
	PayPalOrderID string `json:"paypal_order_id,omitempty"`
}

// HandleCreateSession handles POST /v1/payments/session
func HandleCreateSession(payments *service.PaymentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		result, err := payments.CreateSession(c.Request.Context(), service.CreateSessionRequest{
			OrderID:   orderID,
			Provider:  domain.PaymentProvider(req.Provider),
			ReturnURL: req.ReturnURL,
		})
		if err != nil {
			switch err.(type) {
			case *errors.ErrUnknownProvider:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case *errors.ErrNotFound:
				c.JSON(http.StatusBadRequest, gin.H{"error": "order not found"})
			case *errors.ErrInvalidStateTransition:
				c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
			case *errors.ErrConfiguration:
				logger.Error("Payment provider not configured", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error("Failed to create checkout session", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, CreateSessionResponse{
			Success:       true,
			CheckoutURL:   result.CheckoutURL,
			SessionID:     result.SessionID,
			PayPalOrderID: result.PayPalOrderID,
		})
	}
}
