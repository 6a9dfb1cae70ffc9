package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/domain"
)

type fakeDispatcher struct {
	calls []uuid.UUID
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, orderID uuid.UUID) ([]FulfillmentResult, error) {
	f.calls = append(f.calls, orderID)
	return nil, nil
}

type fakeConverter struct {
	calls []ConvertRequest
}

func (f *fakeConverter) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	f.calls = append(f.calls, req)
	return &ConvertResult{Success: true}, nil
}

func stripeSessionCompletedPayload(eventID, sessionID, paymentIntentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {"object": {"id": %q, "payment_intent": {"id": %q}}}
	}`, eventID, sessionID, paymentIntentID))
}

func stripeChargeRefundedPayload(eventID, paymentIntentID string, amount, refunded int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_1", "amount": %d, "amount_refunded": %d, "payment_intent": {"id": %q}}}
	}`, eventID, amount, refunded, paymentIntentID))
}

func newWebhookFixture() (*WebhookService, *fakeOrderRepo, *fakeDispatcher, *fakeConverter, *fakeCommissionRepo) {
	repos, orders, _ := newTestRepos()
	dispatcher := &fakeDispatcher{}
	converter := &fakeConverter{}
	svc := NewWebhookService(&config.Config{}, repos, dispatcher, converter, zap.NewNop())
	return svc, orders, dispatcher, converter, repos.AffiliateCommission.(*fakeCommissionRepo)
}

func TestHandleStripeEvent(t *testing.T) {
	t.Run("settles the order and dispatches fulfillment", func(t *testing.T) {
		svc, orders, dispatcher, _, _ := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.StripeSessionID = strPtr("cs_1")
		orders.add(order)

		payload := stripeSessionCompletedPayload("evt_1", "cs_1", "pi_1")
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("HandleStripeEvent failed: %v", err)
		}

		if order.PaymentStatus != domain.PaymentStatusPaid {
			t.Errorf("expected paid, got %s", order.PaymentStatus)
		}
		if order.Status != domain.OrderStatusConfirmed {
			t.Errorf("expected confirmed, got %s", order.Status)
		}
		if order.PaymentIntentID == nil || *order.PaymentIntentID != "pi_1" {
			t.Error("payment intent was not persisted")
		}
		if len(dispatcher.calls) != 1 || dispatcher.calls[0] != order.ID {
			t.Errorf("expected 1 fulfillment dispatch for the order, got %v", dispatcher.calls)
		}
	})

	t.Run("skips replayed deliveries", func(t *testing.T) {
		svc, orders, dispatcher, _, _ := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.StripeSessionID = strPtr("cs_1")
		orders.add(order)

		payload := stripeSessionCompletedPayload("evt_1", "cs_1", "pi_1")
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("first delivery failed: %v", err)
		}
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("replayed delivery failed: %v", err)
		}

		if len(dispatcher.calls) != 1 {
			t.Errorf("expected a single dispatch across replays, got %d", len(dispatcher.calls))
		}
	})

	t.Run("does not settle an already paid order twice", func(t *testing.T) {
		svc, orders, dispatcher, _, _ := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.StripeSessionID = strPtr("cs_1")
		order.PaymentStatus = domain.PaymentStatusPaid
		order.Status = domain.OrderStatusConfirmed
		orders.add(order)

		// Distinct event id for the same checkout
		payload := stripeSessionCompletedPayload("evt_2", "cs_1", "pi_1")
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("HandleStripeEvent failed: %v", err)
		}

		if len(dispatcher.calls) != 0 {
			t.Errorf("expected no dispatch for an already paid order, got %d", len(dispatcher.calls))
		}
	})

	t.Run("converts attribution for affiliate orders", func(t *testing.T) {
		svc, orders, _, converter, _ := newWebhookFixture()

		affiliateID := uuid.New()
		order, _ := testOrder(50, 0)
		order.StripeSessionID = strPtr("cs_1")
		order.AffiliateID = &affiliateID
		orders.add(order)

		payload := stripeSessionCompletedPayload("evt_1", "cs_1", "pi_1")
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("HandleStripeEvent failed: %v", err)
		}

		if len(converter.calls) != 1 || converter.calls[0].OrderID != order.ID {
			t.Errorf("expected 1 conversion for the order, got %v", converter.calls)
		}
	})

	t.Run("acknowledges sessions that match no order", func(t *testing.T) {
		svc, _, dispatcher, _, _ := newWebhookFixture()

		payload := stripeSessionCompletedPayload("evt_1", "cs_unknown", "pi_1")
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("expected nil error for unknown session, got %v", err)
		}
		if len(dispatcher.calls) != 0 {
			t.Error("expected no dispatch for unknown session")
		}
	})

	t.Run("full refund rejects pending commissions", func(t *testing.T) {
		svc, orders, _, _, commissions := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.PaymentStatus = domain.PaymentStatusPaid
		order.Status = domain.OrderStatusConfirmed
		order.PaymentIntentID = strPtr("pi_1")
		orders.add(order)

		payload := stripeChargeRefundedPayload("evt_r1", "pi_1", 5000, 5000)
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("HandleStripeEvent failed: %v", err)
		}

		if order.PaymentStatus != domain.PaymentStatusRefunded {
			t.Errorf("expected refunded, got %s", order.PaymentStatus)
		}
		if order.Status != domain.OrderStatusRefunded {
			t.Errorf("expected order refunded, got %s", order.Status)
		}
		if len(commissions.rejected) != 1 || commissions.rejected[0] != order.ID {
			t.Error("expected commissions for the order to be rejected")
		}
	})

	t.Run("partial refund keeps the order confirmed", func(t *testing.T) {
		svc, orders, _, _, commissions := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.PaymentStatus = domain.PaymentStatusPaid
		order.Status = domain.OrderStatusConfirmed
		order.PaymentIntentID = strPtr("pi_1")
		orders.add(order)

		payload := stripeChargeRefundedPayload("evt_r2", "pi_1", 5000, 2000)
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("HandleStripeEvent failed: %v", err)
		}

		if order.PaymentStatus != domain.PaymentStatusPartialRefund {
			t.Errorf("expected partial_refund, got %s", order.PaymentStatus)
		}
		if order.Status != domain.OrderStatusConfirmed {
			t.Errorf("expected order to stay confirmed, got %s", order.Status)
		}
		if len(commissions.rejected) != 0 {
			t.Error("partial refunds must not reject commissions")
		}
	})

	t.Run("ignores unrelated event types", func(t *testing.T) {
		svc, _, dispatcher, _, _ := newWebhookFixture()

		payload := []byte(`{"id": "evt_x", "type": "invoice.created", "data": {"object": {}}}`)
		if err := svc.HandleStripeEvent(context.Background(), payload, ""); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(dispatcher.calls) != 0 {
			t.Error("expected no dispatch")
		}
	})
}

func TestHandlePayPalEvent(t *testing.T) {
	t.Run("settles on capture completed", func(t *testing.T) {
		svc, orders, dispatcher, _, _ := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.PayPalOrderID = strPtr("PAYPAL-1")
		orders.add(order)

		payload := []byte(`{
			"id": "WH-1",
			"event_type": "PAYMENT.CAPTURE.COMPLETED",
			"resource": {"id": "CAP-1", "supplementary_data": {"related_ids": {"order_id": "PAYPAL-1"}}}
		}`)
		if err := svc.HandlePayPalEvent(context.Background(), payload); err != nil {
			t.Fatalf("HandlePayPalEvent failed: %v", err)
		}

		if order.PaymentStatus != domain.PaymentStatusPaid {
			t.Errorf("expected paid, got %s", order.PaymentStatus)
		}
		if order.PaymentIntentID == nil || *order.PaymentIntentID != "CAP-1" {
			t.Error("capture id was not persisted as payment reference")
		}
		if len(dispatcher.calls) != 1 {
			t.Errorf("expected 1 dispatch, got %d", len(dispatcher.calls))
		}
	})

	t.Run("settles on order approved", func(t *testing.T) {
		svc, orders, dispatcher, _, _ := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.PayPalOrderID = strPtr("PAYPAL-2")
		orders.add(order)

		payload := []byte(`{
			"id": "WH-2",
			"event_type": "CHECKOUT.ORDER.APPROVED",
			"resource": {"id": "PAYPAL-2"}
		}`)
		if err := svc.HandlePayPalEvent(context.Background(), payload); err != nil {
			t.Fatalf("HandlePayPalEvent failed: %v", err)
		}

		if order.PaymentStatus != domain.PaymentStatusPaid {
			t.Errorf("expected paid, got %s", order.PaymentStatus)
		}
		if len(dispatcher.calls) != 1 {
			t.Errorf("expected 1 dispatch, got %d", len(dispatcher.calls))
		}
	})

	t.Run("refund event refunds the order", func(t *testing.T) {
		svc, orders, _, _, commissions := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.PayPalOrderID = strPtr("PAYPAL-3")
		order.PaymentStatus = domain.PaymentStatusPaid
		order.Status = domain.OrderStatusConfirmed
		orders.add(order)

		payload := []byte(`{
			"id": "WH-3",
			"event_type": "PAYMENT.CAPTURE.REFUNDED",
			"resource": {"id": "REF-1", "supplementary_data": {"related_ids": {"order_id": "PAYPAL-3"}}}
		}`)
		if err := svc.HandlePayPalEvent(context.Background(), payload); err != nil {
			t.Fatalf("HandlePayPalEvent failed: %v", err)
		}

		if order.PaymentStatus != domain.PaymentStatusRefunded {
			t.Errorf("expected refunded, got %s", order.PaymentStatus)
		}
		if len(commissions.rejected) != 1 {
			t.Error("expected commissions to be rejected")
		}
	})

	t.Run("skips replayed deliveries", func(t *testing.T) {
		svc, orders, dispatcher, _, _ := newWebhookFixture()

		order, _ := testOrder(50, 0)
		order.PayPalOrderID = strPtr("PAYPAL-4")
		orders.add(order)

		payload := []byte(`{
			"id": "WH-4",
			"event_type": "CHECKOUT.ORDER.APPROVED",
			"resource": {"id": "PAYPAL-4"}
		}`)
		if err := svc.HandlePayPalEvent(context.Background(), payload); err != nil {
			t.Fatalf("first delivery failed: %v", err)
		}
		if err := svc.HandlePayPalEvent(context.Background(), payload); err != nil {
			t.Fatalf("replayed delivery failed: %v", err)
		}

		if len(dispatcher.calls) != 1 {
			t.Errorf("expected a single dispatch across replays, got %d", len(dispatcher.calls))
		}
	})
}
