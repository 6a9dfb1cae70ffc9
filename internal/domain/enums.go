package domain

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartialRefund PaymentStatus = "partial_refund"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid,
		PaymentStatusPaid,
		PaymentStatusPartialRefund,
		PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a payment status transition is valid
func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	switch s {
	case PaymentStatusUnpaid:
		return newStatus == PaymentStatusPaid
	case PaymentStatusPaid:
		return newStatus == PaymentStatusPartialRefund ||
			newStatus == PaymentStatusRefunded
	case PaymentStatusPartialRefund:
		return newStatus == PaymentStatusRefunded
	case PaymentStatusRefunded:
		return false // Terminal state
	default:
		return false
	}
}

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusConfirmed,
		OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if an order status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusConfirmed ||
			newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusRefunded
	case OrderStatusConfirmed:
		return newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusRefunded
	case OrderStatusProcessing:
		return newStatus == OrderStatusConfirmed ||
			newStatus == OrderStatusRefunded
	case OrderStatusRefunded:
		return false // Terminal state
	default:
		return false
	}
}

// FulfillmentStatus represents the state of a fulfillment queue entry
type FulfillmentStatus string

const (
	FulfillmentStatusQueued  FulfillmentStatus = "queued"
	FulfillmentStatusOrdered FulfillmentStatus = "ordered"
	// FulfillmentStatusProcessing marks entries that need a human:
	// no supplier endpoint, no supplier at all, or retries exhausted.
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusRetry      FulfillmentStatus = "retry"
)

// IsValid checks if the fulfillment status is valid
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentStatusQueued,
		FulfillmentStatusOrdered,
		FulfillmentStatusProcessing,
		FulfillmentStatusRetry:
		return true
	default:
		return false
	}
}

// CommissionStatus represents the payout state of an affiliate commission
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusRejected CommissionStatus = "rejected"
)

// AffiliateStatus represents the state of an affiliate partner account
type AffiliateStatus string

const (
	AffiliateStatusActive   AffiliateStatus = "active"
	AffiliateStatusInactive AffiliateStatus = "inactive"
)

// EmailStatus represents the delivery state of an email log entry
type EmailStatus string

const (
	EmailStatusQueued EmailStatus = "queued"
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// PaymentProvider identifies the external checkout provider
type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderPayPal PaymentProvider = "paypal"
)

// IsValid checks if the payment provider is recognized
func (p PaymentProvider) IsValid() bool {
	return p == PaymentProviderStripe || p == PaymentProviderPayPal
}

// SourceType identifies who fulfills a line item
type SourceType string

const (
	// SourceTypeDropship items are pushed to supplier APIs by this system
	SourceTypeDropship SourceType = "dropship"
	// SourceTypeAffiliate items are fulfilled by the external partner
	SourceTypeAffiliate SourceType = "affiliate"
)
