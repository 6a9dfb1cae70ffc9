package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexusshop/orderapi/internal/domain"
)

// OrderRepository provides access to orders and their line items
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByStripeSessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	GetByPayPalOrderID(ctx context.Context, paypalOrderID string) (*domain.Order, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	SetPaymentSession(ctx context.Context, id uuid.UUID, provider domain.PaymentProvider, providerRef string) error
	SetPaymentIntentID(ctx context.Context, id uuid.UUID, paymentIntentID string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	SetAffiliateID(ctx context.Context, id uuid.UUID, affiliateID uuid.UUID) error
}

// FulfillmentQueueRepository provides access to fulfillment queue entries
type FulfillmentQueueRepository interface {
	Create(ctx context.Context, entry *domain.FulfillmentQueueEntry) error
	Update(ctx context.Context, entry *domain.FulfillmentQueueEntry) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.FulfillmentQueueEntry, error)
	// ListDueRetries returns retry entries whose next_retry_at has passed
	ListDueRetries(ctx context.Context, now time.Time, limit int) ([]*domain.FulfillmentQueueEntry, error)
}

// SupplierRepository provides access to suppliers
type SupplierRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
}

// AffiliateRepository provides access to affiliate partners
type AffiliateRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AffiliatePartner, error)
	GetActiveByCode(ctx context.Context, code string) (*domain.AffiliatePartner, error)
	Create(ctx context.Context, partner *domain.AffiliatePartner) error
}

// AffiliateCommissionRepository provides access to affiliate commissions
type AffiliateCommissionRepository interface {
	// Create returns *errors.ErrDuplicate when a commission already
	// exists for the (order, affiliate) pair
	Create(ctx context.Context, commission *domain.AffiliateCommission) error
	ExistsForOrderAndAffiliate(ctx context.Context, orderID, affiliateID uuid.UUID) (bool, error)
	RejectByOrderID(ctx context.Context, orderID uuid.UUID) error
}

// AffiliateClickRepository provides access to affiliate click records
type AffiliateClickRepository interface {
	MarkConverted(ctx context.Context, clickID, orderID uuid.UUID) error
}

// EmailLogRepository provides access to email log entries
type EmailLogRepository interface {
	Create(ctx context.Context, entry *domain.EmailLogEntry) error
	MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// WebhookEventRepository records processed provider event ids
type WebhookEventRepository interface {
	// Create returns *errors.ErrDuplicate when the event id was
	// already recorded (replayed delivery)
	Create(ctx context.Context, event *domain.WebhookEvent) error
}

// APIClientRepository provides access to internal API clients
type APIClientRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error)
	Create(ctx context.Context, client *domain.APIClient) error
}

// Repositories bundles all repository implementations
type Repositories struct {
	Order               OrderRepository
	FulfillmentQueue    FulfillmentQueueRepository
	Supplier            SupplierRepository
	Affiliate           AffiliateRepository
	AffiliateCommission AffiliateCommissionRepository
	AffiliateClick      AffiliateClickRepository
	EmailLog            EmailLogRepository
	WebhookEvent        WebhookEventRepository
	APIClient           APIClientRepository
}
