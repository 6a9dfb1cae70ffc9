package domain

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents an upstream dropship supplier
type Supplier struct {
	ID          uuid.UUID
	Name        string
	APIEndpoint *string
	APIKey      *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FulfillmentItem is the item snapshot routed to one supplier
type FulfillmentItem struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// FulfillmentQueueEntry represents one (order, supplier) fulfillment unit.
// SupplierID is nil for items whose supplier could not be resolved; those
// entries are never attempted automatically.
type FulfillmentQueueEntry struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	SupplierID      *uuid.UUID
	Items           []FulfillmentItem // JSONB
	Status          FulfillmentStatus
	AttemptCount    int
	MaxAttempts     int
	LastError       *string
	NextRetryAt     *time.Time
	SupplierOrderID *string
	SupplierCost    *float64
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
