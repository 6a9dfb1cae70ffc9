package service

import (
	"github.com/google/uuid"

	"github.com/nexusshop/orderapi/internal/domain"
)

// CreateSessionRequest asks for a provider-hosted checkout session
type CreateSessionRequest struct {
	OrderID   uuid.UUID
	Provider  domain.PaymentProvider
	ReturnURL string
}

// CreateSessionResponse carries the redirect URL and provider reference
type CreateSessionResponse struct {
	CheckoutURL   string
	SessionID     string
	PayPalOrderID string
}

// FulfillmentResult summarizes the outcome for one supplier group
type FulfillmentResult struct {
	SupplierID      *uuid.UUID `json:"supplierId"`
	Status          string     `json:"status"`
	SupplierOrderID *string    `json:"supplierOrderId,omitempty"`
	Error           *string    `json:"error,omitempty"`
}

// ConvertRequest asks for commission attribution on a completed order
type ConvertRequest struct {
	OrderID       uuid.UUID
	AffiliateCode string
	ClickID       *uuid.UUID
}

// ConvertResult reports the outcome of a conversion attempt. Success
// false with a message is an expected negative outcome, not an error.
type ConvertResult struct {
	Success          bool
	Message          string
	CommissionID     uuid.UUID
	CommissionAmount float64
	AffiliateCode    string
}

// SendEmailRequest asks for one templated email dispatch
type SendEmailRequest struct {
	To       string
	Template string
	Subject  string
	Data     map[string]interface{}
}

// SendEmailResult reports the outcome of a send. DevMode true means no
// provider key was configured and nothing was actually delivered.
type SendEmailResult struct {
	MessageID string
	DevMode   bool
}
