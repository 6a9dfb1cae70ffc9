package domain

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusUnpaid, PaymentStatusPaid, true},
		{PaymentStatusUnpaid, PaymentStatusRefunded, false},
		{PaymentStatusPaid, PaymentStatusPartialRefund, true},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusUnpaid, false},
		{PaymentStatusPartialRefund, PaymentStatusRefunded, true},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusUnpaid, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusRefunded, true},
		{OrderStatusRefunded, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !PaymentProviderStripe.IsValid() || !PaymentProviderPayPal.IsValid() {
		t.Error("known providers must be valid")
	}
	if PaymentProvider("bitcoin").IsValid() {
		t.Error("unknown provider must be invalid")
	}

	if !FulfillmentStatusQueued.IsValid() {
		t.Error("queued must be valid")
	}
	if FulfillmentStatus("shipped").IsValid() {
		t.Error("unknown fulfillment status must be invalid")
	}

	if PaymentStatus("void").IsValid() {
		t.Error("unknown payment status must be invalid")
	}
	if OrderStatus("archived").IsValid() {
		t.Error("unknown order status must be invalid")
	}
}
