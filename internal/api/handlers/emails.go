package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/service"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// SendEmailRequest is the POST /v1/emails/send payload
type SendEmailRequest struct {
	To       string                 `json:"to" binding:"required,email"`
	Template string                 `json:"template" binding:"required"`
	Subject  string                 `json:"subject"`
	Data     map[string]interface{} `json:"data"`
}

// SendEmailResponse reports the delivery outcome
type SendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	DevMode   bool   `json:"dev_mode,omitempty"`
}

// HandleSendEmail handles POST /v1/emails/send
func HandleSendEmail(emails *service.EmailService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		result, err := emails.Send(c.Request.Context(), service.SendEmailRequest{
			To:       req.To,
			Template: req.Template,
			Subject:  req.Subject,
			Data:     req.Data,
		})
		if err != nil {
			if _, ok := err.(*errors.ErrUnknownTemplate); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error("Failed to send email", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send email"})
			return
		}

		c.JSON(http.StatusOK, SendEmailResponse{
			Success:   true,
			MessageID: result.MessageID,
			DevMode:   result.DevMode,
		})
	}
}
