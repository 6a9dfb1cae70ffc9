package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/repository"
)

const clientContextKey = "api_client"

// AuthMiddleware authenticates requests via Bearer API key
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		apiKey := strings.TrimPrefix(authHeader, "Bearer ")
		if apiKey == authHeader || apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			c.Abort()
			return
		}

		client, err := repos.APIClient.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logger.Warn("Authentication failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Set(clientContextKey, client)
		c.Next()
	}
}

// GetClientFromContext returns the authenticated API client
func GetClientFromContext(c *gin.Context) (*domain.APIClient, bool) {
	value, exists := c.Get(clientContextKey)
	if !exists {
		return nil, false
	}
	client, ok := value.(*domain.APIClient)
	return client, ok
}
