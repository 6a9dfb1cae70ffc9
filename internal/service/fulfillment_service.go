package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/internal/supplier"
)

const manualFulfillmentNote = "manual fulfillment required"

// SupplierGateway places orders against supplier fulfillment APIs
type SupplierGateway interface {
	PlaceOrder(ctx context.Context, endpoint, apiKey string, order supplier.OrderRequest) (*supplier.OrderResponse, error)
}

// ConfirmationMailer dispatches templated emails
type ConfirmationMailer interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

// FulfillmentService splits paid orders across suppliers and pushes
// them to per-supplier APIs with retry bookkeeping
type FulfillmentService struct {
	repos      *repository.Repositories
	supplier   SupplierGateway
	mailer     ConfirmationMailer
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(repos *repository.Repositories, gateway SupplierGateway, mailer ConfirmationMailer, retryDelay time.Duration, logger *zap.Logger) *FulfillmentService {
	if retryDelay <= 0 {
		retryDelay = 30 * time.Minute
	}
	return &FulfillmentService{
		repos:      repos,
		supplier:   gateway,
		mailer:     mailer,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Dispatch groups an order's dropship items by supplier, creates one
// queue entry per group, attempts automated placement where a supplier
// API is configured, and sends the confirmation email regardless of
// per-supplier outcomes
func (s *FulfillmentService) Dispatch(ctx context.Context, orderID uuid.UUID) ([]FulfillmentResult, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing); err != nil {
		return nil, err
	}

	items, err := s.repos.Order.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	groups := groupItemsBySupplier(items)

	results := make([]FulfillmentResult, 0, len(groups))
	for _, group := range groups {
		entry := &domain.FulfillmentQueueEntry{
			OrderID:      order.ID,
			SupplierID:   group.supplierID,
			Items:        group.items,
			Status:       domain.FulfillmentStatusQueued,
			AttemptCount: 0,
			MaxAttempts:  3,
		}
		if err := s.repos.FulfillmentQueue.Create(ctx, entry); err != nil {
			return nil, err
		}

		result := s.processEntry(ctx, entry, order)
		results = append(results, result)
	}

	s.sendConfirmationEmail(ctx, order, items)

	s.logger.Info("Order fulfillment dispatched",
		zap.String("order_id", order.ID.String()),
		zap.Int("supplier_groups", len(results)),
	)

	return results, nil
}

// processEntry attempts automated placement for one freshly created
// queue entry and persists the outcome
func (s *FulfillmentService) processEntry(ctx context.Context, entry *domain.FulfillmentQueueEntry, order *domain.Order) FulfillmentResult {
	// Unknown supplier: a human has to source these items
	if entry.SupplierID == nil {
		s.markManual(ctx, entry)
		return resultFromEntry(entry)
	}

	sup, err := s.repos.Supplier.GetByID(ctx, *entry.SupplierID)
	if err != nil {
		s.logger.Warn("Supplier lookup failed, routing to manual fulfillment",
			zap.String("supplier_id", entry.SupplierID.String()),
			zap.Error(err),
		)
		s.markManual(ctx, entry)
		return resultFromEntry(entry)
	}

	if sup.APIEndpoint == nil || *sup.APIEndpoint == "" {
		s.markManual(ctx, entry)
		return resultFromEntry(entry)
	}

	s.attemptPlacement(ctx, entry, sup, order)
	if err := s.repos.FulfillmentQueue.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to persist queue entry outcome", zap.Error(err))
	}
	return resultFromEntry(entry)
}

// attemptPlacement runs one supplier API call and mutates the entry's
// status/attempt bookkeeping; the caller persists the entry
func (s *FulfillmentService) attemptPlacement(ctx context.Context, entry *domain.FulfillmentQueueEntry, sup *domain.Supplier, order *domain.Order) {
	orderReq := supplier.OrderRequest{
		Reference:       order.OrderNumber,
		ShippingAddress: order.ShippingAddress,
		Items:           make([]supplier.OrderItem, 0, len(entry.Items)),
	}
	for _, item := range entry.Items {
		orderReq.Items = append(orderReq.Items, supplier.OrderItem{
			SKU:      item.SKU,
			Quantity: item.Quantity,
		})
	}

	apiKey := ""
	if sup.APIKey != nil {
		apiKey = *sup.APIKey
	}

	now := time.Now()
	resp, err := s.supplier.PlaceOrder(ctx, *sup.APIEndpoint, apiKey, orderReq)
	if err != nil {
		msg := err.Error()
		if apiErr, ok := err.(*supplier.APIError); ok {
			msg = apiErr.Body
		}
		entry.AttemptCount++
		entry.LastError = &msg

		if entry.AttemptCount >= entry.MaxAttempts {
			// Retries exhausted, park for a human
			entry.Status = domain.FulfillmentStatusProcessing
			entry.NextRetryAt = nil
		} else {
			entry.Status = domain.FulfillmentStatusRetry
			next := now.Add(s.retryDelay)
			entry.NextRetryAt = &next
		}

		s.logger.Warn("Supplier order placement failed",
			zap.String("order_id", entry.OrderID.String()),
			zap.String("supplier", sup.Name),
			zap.Int("attempt", entry.AttemptCount),
			zap.String("error", msg),
		)
		return
	}

	entry.Status = domain.FulfillmentStatusOrdered
	entry.SupplierOrderID = &resp.OrderID
	entry.SupplierCost = &resp.Cost
	entry.ProcessedAt = &now
	entry.NextRetryAt = nil
	entry.LastError = nil
}

// ProcessDueRetries re-attempts retry entries whose next_retry_at has
// passed. Returns the number of entries processed.
func (s *FulfillmentService) ProcessDueRetries(ctx context.Context, limit int) (int, error) {
	entries, err := s.repos.FulfillmentQueue.ListDueRetries(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, entry := range entries {
		if entry.SupplierID == nil {
			continue
		}

		order, err := s.repos.Order.GetByID(ctx, entry.OrderID)
		if err != nil {
			s.logger.Error("Retry sweep: order lookup failed",
				zap.String("order_id", entry.OrderID.String()),
				zap.Error(err),
			)
			continue
		}

		sup, err := s.repos.Supplier.GetByID(ctx, *entry.SupplierID)
		if err != nil || sup.APIEndpoint == nil || *sup.APIEndpoint == "" {
			s.markManual(ctx, entry)
			continue
		}

		s.attemptPlacement(ctx, entry, sup, order)
		if err := s.repos.FulfillmentQueue.Update(ctx, entry); err != nil {
			s.logger.Error("Retry sweep: failed to persist entry", zap.Error(err))
			continue
		}
		processed++
	}

	return processed, nil
}

func (s *FulfillmentService) markManual(ctx context.Context, entry *domain.FulfillmentQueueEntry) {
	note := manualFulfillmentNote
	entry.Status = domain.FulfillmentStatusProcessing
	entry.LastError = &note
	entry.NextRetryAt = nil
	if err := s.repos.FulfillmentQueue.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to persist manual entry", zap.Error(err))
	}
}

// sendConfirmationEmail is best-effort: confirmation is not conditioned
// on fulfillment success and must not fail the dispatch
func (s *FulfillmentService) sendConfirmationEmail(ctx context.Context, order *domain.Order, items []*domain.OrderItem) {
	itemData := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		itemData = append(itemData, map[string]interface{}{
			"name":     item.Name,
			"quantity": item.Quantity,
			"price":    fmt.Sprintf("%.2f", item.UnitPrice),
		})
	}

	_, err := s.mailer.Send(ctx, SendEmailRequest{
		To:       order.CustomerEmail,
		Template: "order_confirmation",
		Data: map[string]interface{}{
			"order_number":  order.OrderNumber,
			"customer_name": order.CustomerName,
			"items":         itemData,
			"total":         fmt.Sprintf("%.2f", order.Total),
			"currency":      order.Currency,
		},
	})
	if err != nil {
		s.logger.Error("Failed to send order confirmation email",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

type supplierGroup struct {
	supplierID *uuid.UUID
	items      []domain.FulfillmentItem
}

// groupItemsBySupplier buckets dropship items per supplier, preserving
// first-seen supplier order. Affiliate-sourced items are fulfilled by
// the external partner and never enter the queue. Items without a
// supplier share a single nil-supplier bucket.
func groupItemsBySupplier(items []*domain.OrderItem) []supplierGroup {
	var groups []supplierGroup
	index := make(map[uuid.UUID]int)
	nilIndex := -1

	for _, item := range items {
		if item.SourceType == domain.SourceTypeAffiliate {
			continue
		}

		fulfillmentItem := domain.FulfillmentItem{
			ProductID: item.ProductID,
			SKU:       item.SupplierSKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}

		if item.SupplierID == nil {
			if nilIndex == -1 {
				groups = append(groups, supplierGroup{})
				nilIndex = len(groups) - 1
			}
			groups[nilIndex].items = append(groups[nilIndex].items, fulfillmentItem)
			continue
		}

		idx, ok := index[*item.SupplierID]
		if !ok {
			supplierID := *item.SupplierID
			groups = append(groups, supplierGroup{supplierID: &supplierID})
			idx = len(groups) - 1
			index[supplierID] = idx
		}
		groups[idx].items = append(groups[idx].items, fulfillmentItem)
	}

	return groups
}

func resultFromEntry(entry *domain.FulfillmentQueueEntry) FulfillmentResult {
	return FulfillmentResult{
		SupplierID:      entry.SupplierID,
		Status:          string(entry.Status),
		SupplierOrderID: entry.SupplierOrderID,
		Error:           entry.LastError,
	}
}
