package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/paypal"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// OrderDispatcher pushes a settled order into fulfillment
type OrderDispatcher interface {
	Dispatch(ctx context.Context, orderID uuid.UUID) ([]FulfillmentResult, error)
}

// CommissionConverter records affiliate commission for a settled order
type CommissionConverter interface {
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error)
}

// WebhookService settles orders from provider webhook deliveries.
// Settlement marks the order paid exactly once and fans out to
// fulfillment and affiliate attribution.
type WebhookService struct {
	cfg         *config.Config
	repos       *repository.Repositories
	fulfillment OrderDispatcher
	affiliate   CommissionConverter
	logger      *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(cfg *config.Config, repos *repository.Repositories, fulfillment OrderDispatcher, affiliate CommissionConverter, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		cfg:         cfg,
		repos:       repos,
		fulfillment: fulfillment,
		affiliate:   affiliate,
		logger:      logger,
	}
}

// HandleStripeEvent verifies and processes one Stripe webhook delivery
func (s *WebhookService) HandleStripeEvent(ctx context.Context, payload []byte, signature string) error {
	var event stripe.Event

	if s.cfg.Stripe.WebhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, signature, s.cfg.Stripe.WebhookSecret)
		if err != nil {
			return &errors.ErrUnauthorized{Message: "invalid webhook signature"}
		}
		event = verified
	} else {
		// Local development without stripe listen: accept unsigned payloads
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to parse webhook payload: %w", err)
		}
		s.logger.Warn("Stripe webhook secret not configured, skipping signature verification")
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleStripeSessionCompleted(ctx, &event)
	case "charge.refunded":
		return s.handleStripeChargeRefunded(ctx, &event)
	default:
		s.logger.Debug("Ignoring stripe event", zap.String("event_type", string(event.Type)))
		return nil
	}
}

func (s *WebhookService) handleStripeSessionCompleted(ctx context.Context, event *stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	if skip := s.recordEvent(ctx, event.ID, domain.PaymentProviderStripe, string(event.Type)); skip {
		return nil
	}

	order, err := s.repos.Order.GetByStripeSessionID(ctx, sess.ID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			// Session from another environment or a deleted order;
			// acknowledge so the provider stops redelivering.
			s.logger.Warn("Stripe session does not match any order",
				zap.String("session_id", sess.ID),
			)
			return nil
		}
		return err
	}

	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		if err := s.repos.Order.SetPaymentIntentID(ctx, order.ID, sess.PaymentIntent.ID); err != nil {
			return err
		}
	}

	return s.settleOrder(ctx, order)
}

func (s *WebhookService) handleStripeChargeRefunded(ctx context.Context, event *stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return fmt.Errorf("failed to parse charge: %w", err)
	}

	if skip := s.recordEvent(ctx, event.ID, domain.PaymentProviderStripe, string(event.Type)); skip {
		return nil
	}

	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		s.logger.Warn("Refunded charge carries no payment intent",
			zap.String("charge_id", charge.ID),
		)
		return nil
	}

	order, err := s.repos.Order.GetByPaymentIntentID(ctx, charge.PaymentIntent.ID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			s.logger.Warn("Refunded charge does not match any order",
				zap.String("payment_intent_id", charge.PaymentIntent.ID),
			)
			return nil
		}
		return err
	}

	fullRefund := charge.AmountRefunded >= charge.Amount
	return s.applyRefund(ctx, order, fullRefund)
}

// HandlePayPalEvent processes one PayPal webhook delivery
func (s *WebhookService) HandlePayPalEvent(ctx context.Context, payload []byte) error {
	var event paypal.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	switch event.EventType {
	case "CHECKOUT.ORDER.APPROVED", "PAYMENT.CAPTURE.COMPLETED":
		return s.handlePayPalSettled(ctx, &event)
	case "PAYMENT.CAPTURE.REFUNDED":
		return s.handlePayPalRefunded(ctx, &event)
	default:
		s.logger.Debug("Ignoring paypal event", zap.String("event_type", event.EventType))
		return nil
	}
}

func (s *WebhookService) handlePayPalSettled(ctx context.Context, event *paypal.WebhookEvent) error {
	var resource paypal.WebhookResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return fmt.Errorf("failed to parse webhook resource: %w", err)
	}

	if skip := s.recordEvent(ctx, event.ID, domain.PaymentProviderPayPal, event.EventType); skip {
		return nil
	}

	order, err := s.repos.Order.GetByPayPalOrderID(ctx, resource.OrderID())
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			s.logger.Warn("PayPal order id does not match any order",
				zap.String("paypal_order_id", resource.OrderID()),
			)
			return nil
		}
		return err
	}

	// Capture id doubles as the payment reference for later refunds
	if event.EventType == "PAYMENT.CAPTURE.COMPLETED" && resource.ID != "" {
		if err := s.repos.Order.SetPaymentIntentID(ctx, order.ID, resource.ID); err != nil {
			return err
		}
	}

	return s.settleOrder(ctx, order)
}

func (s *WebhookService) handlePayPalRefunded(ctx context.Context, event *paypal.WebhookEvent) error {
	var resource paypal.WebhookResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return fmt.Errorf("failed to parse webhook resource: %w", err)
	}

	if skip := s.recordEvent(ctx, event.ID, domain.PaymentProviderPayPal, event.EventType); skip {
		return nil
	}

	order, err := s.repos.Order.GetByPayPalOrderID(ctx, resource.OrderID())
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			s.logger.Warn("PayPal refund does not match any order",
				zap.String("paypal_order_id", resource.OrderID()),
			)
			return nil
		}
		return err
	}

	// PayPal refund events do not carry the remaining balance in the
	// fields we read, so a refund delivery is treated as full.
	return s.applyRefund(ctx, order, true)
}

// recordEvent persists the provider event id. Returns true when the
// event was already processed and the delivery should be skipped.
func (s *WebhookService) recordEvent(ctx context.Context, eventID string, provider domain.PaymentProvider, eventType string) bool {
	err := s.repos.WebhookEvent.Create(ctx, &domain.WebhookEvent{
		EventID:   eventID,
		Provider:  provider,
		EventType: eventType,
	})
	if err == nil {
		return false
	}
	if _, ok := err.(*errors.ErrDuplicate); ok {
		s.logger.Info("Skipping replayed webhook event",
			zap.String("event_id", eventID),
			zap.String("provider", string(provider)),
		)
		return true
	}
	// Treat a bookkeeping failure as non-fatal; the paid guard in
	// settleOrder still prevents double fan-out.
	s.logger.Error("Failed to record webhook event", zap.Error(err))
	return false
}

// settleOrder marks the order paid and fans out to fulfillment and
// affiliate attribution. Orders already paid are left untouched, which
// makes settlement idempotent across distinct provider events for the
// same checkout.
func (s *WebhookService) settleOrder(ctx context.Context, order *domain.Order) error {
	if order.PaymentStatus == domain.PaymentStatusPaid {
		s.logger.Info("Order already settled, skipping",
			zap.String("order_id", order.ID.String()),
		)
		return nil
	}
	if !order.PaymentStatus.CanTransitionTo(domain.PaymentStatusPaid) {
		return &errors.ErrInvalidStateTransition{
			From: order.PaymentStatus,
			To:   domain.PaymentStatusPaid,
		}
	}

	if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusPaid, domain.OrderStatusConfirmed); err != nil {
		return err
	}

	s.logger.Info("Order settled",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
	)

	// Fan-out is best-effort: the payment is settled either way, and
	// each branch has its own recovery path (retry queue, manual replay).
	if _, err := s.fulfillment.Dispatch(ctx, order.ID); err != nil {
		s.logger.Error("Fulfillment dispatch failed after settlement",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	if order.AffiliateID != nil {
		if _, err := s.affiliate.Convert(ctx, ConvertRequest{OrderID: order.ID}); err != nil {
			s.logger.Error("Affiliate conversion failed after settlement",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *WebhookService) applyRefund(ctx context.Context, order *domain.Order, full bool) error {
	if full {
		if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusRefunded, domain.OrderStatusRefunded); err != nil {
			return err
		}
		// Commission on a fully refunded order is never paid out
		if err := s.repos.AffiliateCommission.RejectByOrderID(ctx, order.ID); err != nil {
			s.logger.Error("Failed to reject commissions for refunded order",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
		s.logger.Info("Order fully refunded",
			zap.String("order_id", order.ID.String()),
		)
		return nil
	}

	if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusPartialRefund, order.Status); err != nil {
		return err
	}
	s.logger.Info("Order partially refunded",
		zap.String("order_id", order.ID.String()),
	)
	return nil
}
