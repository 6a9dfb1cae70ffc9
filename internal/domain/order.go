package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a customer order
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	CustomerEmail   string
	CustomerName    string
	ShippingAddress map[string]interface{} // JSONB
	Currency        string
	ShippingCost    float64
	Total           float64
	PaymentStatus   PaymentStatus
	Status          OrderStatus
	PaymentMethod   *PaymentProvider
	StripeSessionID *string
	PayPalOrderID   *string
	PaymentIntentID *string
	AffiliateID     *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem represents a line item in an order
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   string
	Name        string
	UnitPrice   float64
	Quantity    int
	SupplierID  *uuid.UUID
	SupplierSKU string
	SourceType  SourceType
	CreatedAt   time.Time
}

// LineTotal returns the item subtotal
func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
