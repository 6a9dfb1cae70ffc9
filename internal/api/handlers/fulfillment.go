package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/service"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// FulfillResponse summarizes per-supplier dispatch outcomes
type FulfillResponse struct {
	Success bool                        `json:"success"`
	OrderID string                      `json:"order_id"`
	Results []service.FulfillmentResult `json:"fulfillment_results"`
}

// HandleFulfillOrder handles POST /v1/orders/:id/fulfill. Exposed for
// manual replay when the settlement fan-out did not reach fulfillment.
func HandleFulfillOrder(fulfillment *service.FulfillmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		results, err := fulfillment.Dispatch(c.Request.Context(), orderID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to dispatch fulfillment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, FulfillResponse{
			Success: true,
			OrderID: orderID.String(),
			Results: results,
		})
	}
}
