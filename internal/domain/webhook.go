package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent records a processed provider event id so replayed
// deliveries are recognized and skipped
type WebhookEvent struct {
	EventID     string
	Provider    PaymentProvider
	EventType   string
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// APIClient represents an internal caller authorized to invoke the
// pipeline endpoints
type APIClient struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
