package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/service"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// ConvertRequest is the POST /v1/affiliates/convert payload
type ConvertRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	AffiliateCode string `json:"affiliate_code"`
	ClickID       string `json:"click_id"`
}

// ConvertResponse reports the conversion outcome
type ConvertResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	CommissionID     string  `json:"commission_id,omitempty"`
	CommissionAmount float64 `json:"commission_amount,omitempty"`
	AffiliateCode    string  `json:"affiliate_code,omitempty"`
}

// HandleConvert handles POST /v1/affiliates/convert
func HandleConvert(affiliates *service.AffiliateService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConvertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var clickID *uuid.UUID
		if req.ClickID != "" {
			parsed, err := uuid.Parse(req.ClickID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid click ID"})
				return
			}
			clickID = &parsed
		}

		result, err := affiliates.Convert(c.Request.Context(), service.ConvertRequest{
			OrderID:       orderID,
			AffiliateCode: req.AffiliateCode,
			ClickID:       clickID,
		})
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to record conversion", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		resp := ConvertResponse{
			Success:          result.Success,
			Message:          result.Message,
			CommissionAmount: result.CommissionAmount,
			AffiliateCode:    result.AffiliateCode,
		}
		if result.CommissionID != uuid.Nil {
			resp.CommissionID = result.CommissionID.String()
		}
		c.JSON(http.StatusOK, resp)
	}
}
