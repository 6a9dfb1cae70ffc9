package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/paypal"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// StripeSessionAPI creates Stripe Checkout Sessions
type StripeSessionAPI interface {
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// PayPalAPI creates PayPal orders
type PayPalAPI interface {
	CreateOrder(ctx context.Context, req paypal.CreateOrderRequest) (*paypal.Order, error)
}

type stripeGateway struct{}

func (stripeGateway) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	// Uses the package-level stripe.Key set at startup
	return session.New(params)
}

// PaymentService creates provider-hosted checkout sessions for orders
type PaymentService struct {
	cfg    *config.Config
	repos  *repository.Repositories
	stripe StripeSessionAPI
	paypal PayPalAPI
	logger *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(cfg *config.Config, repos *repository.Repositories, paypalClient PayPalAPI, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		cfg:    cfg,
		repos:  repos,
		stripe: stripeGateway{},
		paypal: paypalClient,
		logger: logger,
	}
}

// CreateSession creates a checkout session with the requested provider
// and persists the provider reference on the order
func (s *PaymentService) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error) {
	if !req.Provider.IsValid() {
		return nil, &errors.ErrUnknownProvider{Provider: string(req.Provider)}
	}

	order, err := s.repos.Order.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	// A replayed checkout initiation must not mint a second session
	// for an order that has already settled.
	if order.PaymentStatus != domain.PaymentStatusUnpaid {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.PaymentStatus,
			To:   domain.PaymentStatusUnpaid,
		}
	}

	items, err := s.repos.Order.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.Shop.BaseURL + "/checkout/success"
	}

	switch req.Provider {
	case domain.PaymentProviderStripe:
		return s.createStripeSession(ctx, order, items, returnURL)
	case domain.PaymentProviderPayPal:
		return s.createPayPalOrder(ctx, order, returnURL)
	default:
		return nil, &errors.ErrUnknownProvider{Provider: string(req.Provider)}
	}
}

func (s *PaymentService) createStripeSession(ctx context.Context, order *domain.Order, items []*domain.OrderItem, returnURL string) (*CreateSessionResponse, error) {
	if s.cfg.Stripe.SecretKey == "" {
		return nil, &errors.ErrConfiguration{Key: "STRIPE_SECRET_KEY"}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     buildStripeLineItems(order, items),
		SuccessURL:    stripe.String(returnURL),
		CancelURL:     stripe.String(s.cfg.Shop.BaseURL + "/checkout/cancel"),
		CustomerEmail: stripe.String(order.CustomerEmail),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("order_number", order.OrderNumber)

	sess, err := s.stripe.NewCheckoutSession(params)
	if err != nil {
		s.logger.Error("Stripe session creation failed", zap.Error(err))
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.repos.Order.SetPaymentSession(ctx, order.ID, domain.PaymentProviderStripe, sess.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Stripe checkout session created",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sess.ID),
	)

	return &CreateSessionResponse{
		CheckoutURL: sess.URL,
		SessionID:   sess.ID,
	}, nil
}

func (s *PaymentService) createPayPalOrder(ctx context.Context, order *domain.Order, returnURL string) (*CreateSessionResponse, error) {
	if s.cfg.PayPal.ClientID == "" || s.cfg.PayPal.Secret == "" {
		return nil, &errors.ErrConfiguration{Key: "PAYPAL_CLIENT_ID / PAYPAL_SECRET"}
	}

	orderReq := paypal.CreateOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypal.PurchaseUnit{
			{
				ReferenceID: order.OrderNumber,
				Description: fmt.Sprintf("%s order %s", s.cfg.Shop.Name, order.OrderNumber),
				Amount: paypal.Amount{
					CurrencyCode: strings.ToUpper(order.Currency),
					Value:        fmt.Sprintf("%.2f", order.Total),
				},
			},
		},
		ApplicationContext: &paypal.ApplicationContext{
			ReturnURL: returnURL,
			CancelURL: s.cfg.Shop.BaseURL + "/checkout/cancel",
			BrandName: s.cfg.Shop.Name,
		},
	}

	paypalOrder, err := s.paypal.CreateOrder(ctx, orderReq)
	if err != nil {
		s.logger.Error("PayPal order creation failed", zap.Error(err))
		return nil, fmt.Errorf("failed to create paypal order: %w", err)
	}

	if err := s.repos.Order.SetPaymentSession(ctx, order.ID, domain.PaymentProviderPayPal, paypalOrder.ID); err != nil {
		return nil, err
	}

	s.logger.Info("PayPal order created",
		zap.String("order_id", order.ID.String()),
		zap.String("paypal_order_id", paypalOrder.ID),
	)

	return &CreateSessionResponse{
		CheckoutURL:   paypalOrder.ApproveURL(),
		PayPalOrderID: paypalOrder.ID,
	}, nil
}

// buildStripeLineItems builds one price line per order item plus a
// Shipping line when the order carries a shipping cost
func buildStripeLineItems(order *domain.Order, items []*domain.OrderItem) []*stripe.CheckoutSessionLineItemParams {
	currency := strings.ToLower(order.Currency)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items)+1)
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(toCents(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	if order.ShippingCost > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping"),
				},
				UnitAmount: stripe.Int64(toCents(order.ShippingCost)),
			},
			Quantity: stripe.Int64(1),
		})
	}

	return lineItems
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
