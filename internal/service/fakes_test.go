package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/internal/resend"
	"github.com/nexusshop/orderapi/internal/supplier"
	"github.com/nexusshop/orderapi/pkg/errors"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]*domain.OrderItem
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]*domain.OrderItem),
	}
}

func (f *fakeOrderRepo) add(order *domain.Order, items ...*domain.OrderItem) {
	f.orders[order.ID] = order
	f.items[order.ID] = items
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return order, nil
}

func (f *fakeOrderRepo) GetByStripeSessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	for _, order := range f.orders {
		if order.StripeSessionID != nil && *order.StripeSessionID == sessionID {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: sessionID}
}

func (f *fakeOrderRepo) GetByPayPalOrderID(ctx context.Context, paypalOrderID string) (*domain.Order, error) {
	for _, order := range f.orders {
		if order.PayPalOrderID != nil && *order.PayPalOrderID == paypalOrderID {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: paypalOrderID}
}

func (f *fakeOrderRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	for _, order := range f.orders {
		if order.PaymentIntentID != nil && *order.PaymentIntentID == paymentIntentID {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: paymentIntentID}
}

func (f *fakeOrderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) SetPaymentSession(ctx context.Context, id uuid.UUID, provider domain.PaymentProvider, providerRef string) error {
	order, ok := f.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	ref := providerRef
	order.PaymentMethod = &provider
	switch provider {
	case domain.PaymentProviderStripe:
		order.StripeSessionID = &ref
	case domain.PaymentProviderPayPal:
		order.PayPalOrderID = &ref
	}
	return nil
}

func (f *fakeOrderRepo) SetPaymentIntentID(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	order, ok := f.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.PaymentIntentID = &paymentIntentID
	return nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.PaymentStatus = paymentStatus
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) SetAffiliateID(ctx context.Context, id uuid.UUID, affiliateID uuid.UUID) error {
	order, ok := f.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.AffiliateID = &affiliateID
	return nil
}

type fakeFulfillmentQueueRepo struct {
	entries []*domain.FulfillmentQueueEntry
	updates int
}

func (f *fakeFulfillmentQueueRepo) Create(ctx context.Context, entry *domain.FulfillmentQueueEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeFulfillmentQueueRepo) Update(ctx context.Context, entry *domain.FulfillmentQueueEntry) error {
	f.updates++
	return nil
}

func (f *fakeFulfillmentQueueRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.FulfillmentQueueEntry, error) {
	var result []*domain.FulfillmentQueueEntry
	for _, entry := range f.entries {
		if entry.OrderID == orderID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeFulfillmentQueueRepo) ListDueRetries(ctx context.Context, now time.Time, limit int) ([]*domain.FulfillmentQueueEntry, error) {
	var result []*domain.FulfillmentQueueEntry
	for _, entry := range f.entries {
		if entry.Status == domain.FulfillmentStatusRetry &&
			entry.NextRetryAt != nil && !entry.NextRetryAt.After(now) {
			result = append(result, entry)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*domain.Supplier
}

func (f *fakeSupplierRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	sup, ok := f.suppliers[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "supplier", ID: id.String()}
	}
	return sup, nil
}

type fakeAffiliateRepo struct {
	partners map[uuid.UUID]*domain.AffiliatePartner
}

func (f *fakeAffiliateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AffiliatePartner, error) {
	partner, ok := f.partners[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "affiliate", ID: id.String()}
	}
	return partner, nil
}

func (f *fakeAffiliateRepo) GetActiveByCode(ctx context.Context, code string) (*domain.AffiliatePartner, error) {
	for _, partner := range f.partners {
		if partner.Code == code && partner.Status == domain.AffiliateStatusActive {
			return partner, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "affiliate", ID: code}
}

func (f *fakeAffiliateRepo) Create(ctx context.Context, partner *domain.AffiliatePartner) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	f.partners[partner.ID] = partner
	return nil
}

type commissionKey struct {
	orderID     uuid.UUID
	affiliateID uuid.UUID
}

type fakeCommissionRepo struct {
	commissions map[commissionKey]*domain.AffiliateCommission
	rejected    []uuid.UUID
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{
		commissions: make(map[commissionKey]*domain.AffiliateCommission),
	}
}

func (f *fakeCommissionRepo) Create(ctx context.Context, commission *domain.AffiliateCommission) error {
	key := commissionKey{commission.OrderID, commission.AffiliateID}
	if _, exists := f.commissions[key]; exists {
		return &errors.ErrDuplicate{Resource: "commission", Detail: commission.OrderID.String()}
	}
	if commission.ID == uuid.Nil {
		commission.ID = uuid.New()
	}
	f.commissions[key] = commission
	return nil
}

func (f *fakeCommissionRepo) ExistsForOrderAndAffiliate(ctx context.Context, orderID, affiliateID uuid.UUID) (bool, error) {
	_, exists := f.commissions[commissionKey{orderID, affiliateID}]
	return exists, nil
}

func (f *fakeCommissionRepo) RejectByOrderID(ctx context.Context, orderID uuid.UUID) error {
	f.rejected = append(f.rejected, orderID)
	for key, commission := range f.commissions {
		if key.orderID == orderID && commission.Status == domain.CommissionStatusPending {
			commission.Status = domain.CommissionStatusRejected
		}
	}
	return nil
}

type fakeClickRepo struct {
	converted map[uuid.UUID]uuid.UUID
}

func (f *fakeClickRepo) MarkConverted(ctx context.Context, clickID, orderID uuid.UUID) error {
	if f.converted == nil {
		f.converted = make(map[uuid.UUID]uuid.UUID)
	}
	f.converted[clickID] = orderID
	return nil
}

type fakeEmailLogRepo struct {
	entries []*domain.EmailLogEntry
	sent    map[uuid.UUID]string
	failed  map[uuid.UUID]string
}

func newFakeEmailLogRepo() *fakeEmailLogRepo {
	return &fakeEmailLogRepo{
		sent:   make(map[uuid.UUID]string),
		failed: make(map[uuid.UUID]string),
	}
}

func (f *fakeEmailLogRepo) Create(ctx context.Context, entry *domain.EmailLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeEmailLogRepo) MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error {
	f.sent[id] = providerMessageID
	return nil
}

func (f *fakeEmailLogRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	f.failed[id] = errorMessage
	return nil
}

type fakeWebhookEventRepo struct {
	seen map[string]bool
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{seen: make(map[string]bool)}
}

func (f *fakeWebhookEventRepo) Create(ctx context.Context, event *domain.WebhookEvent) error {
	if f.seen[event.EventID] {
		return &errors.ErrDuplicate{Resource: "webhook event", Detail: event.EventID}
	}
	f.seen[event.EventID] = true
	return nil
}

// newTestRepos builds a repository set from fakes; unused slots stay nil
func newTestRepos() (*repository.Repositories, *fakeOrderRepo, *fakeFulfillmentQueueRepo) {
	orders := newFakeOrderRepo()
	queue := &fakeFulfillmentQueueRepo{}
	repos := &repository.Repositories{
		Order:               orders,
		FulfillmentQueue:    queue,
		Supplier:            &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*domain.Supplier)},
		Affiliate:           &fakeAffiliateRepo{partners: make(map[uuid.UUID]*domain.AffiliatePartner)},
		AffiliateCommission: newFakeCommissionRepo(),
		AffiliateClick:      &fakeClickRepo{},
		EmailLog:            newFakeEmailLogRepo(),
		WebhookEvent:        newFakeWebhookEventRepo(),
	}
	return repos, orders, queue
}

type fakeSupplierGateway struct {
	calls     []supplier.OrderRequest
	endpoints []string
	response  *supplier.OrderResponse
	err       error
}

func (f *fakeSupplierGateway) PlaceOrder(ctx context.Context, endpoint, apiKey string, order supplier.OrderRequest) (*supplier.OrderResponse, error) {
	f.calls = append(f.calls, order)
	f.endpoints = append(f.endpoints, endpoint)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeMailer struct {
	sent []SendEmailRequest
}

func (f *fakeMailer) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	f.sent = append(f.sent, req)
	return &SendEmailResult{MessageID: "fake-message"}, nil
}

type fakeEmailProvider struct {
	requests []resend.SendRequest
	response *resend.SendResponse
	err      error
}

func (f *fakeEmailProvider) Send(ctx context.Context, sendReq resend.SendRequest) (*resend.SendResponse, error) {
	f.requests = append(f.requests, sendReq)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}
