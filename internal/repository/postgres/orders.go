package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, order_number, customer_email, customer_name, shipping_address,
	currency, shipping_cost, total, payment_status, status,
	payment_method, stripe_session_id, paypal_order_id, payment_intent_id,
	affiliate_id, created_at, updated_at
`

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id), id.String())
}

func (r *orderRepository) GetByStripeSessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, sessionID), sessionID)
}

func (r *orderRepository) GetByPayPalOrderID(ctx context.Context, paypalOrderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE paypal_order_id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, paypalOrderID), paypalOrderID)
}

func (r *orderRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, paymentIntentID), paymentIntentID)
}

func (r *orderRepository) scanOrder(row *sql.Row, ref string) (*domain.Order, error) {
	var order domain.Order
	var addressJSON []byte
	var paymentMethod, stripeSessionID, paypalOrderID, paymentIntentID sql.NullString
	var affiliateID uuid.NullUUID

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.CustomerEmail,
		&order.CustomerName,
		&addressJSON,
		&order.Currency,
		&order.ShippingCost,
		&order.Total,
		&order.PaymentStatus,
		&order.Status,
		&paymentMethod,
		&stripeSessionID,
		&paypalOrderID,
		&paymentIntentID,
		&affiliateID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: ref}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.Error(err))
		return nil, err
	}

	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, err
		}
	}
	if paymentMethod.Valid {
		provider := domain.PaymentProvider(paymentMethod.String)
		order.PaymentMethod = &provider
	}
	if stripeSessionID.Valid {
		order.StripeSessionID = &stripeSessionID.String
	}
	if paypalOrderID.Valid {
		order.PayPalOrderID = &paypalOrderID.String
	}
	if paymentIntentID.Valid {
		order.PaymentIntentID = &paymentIntentID.String
	}
	if affiliateID.Valid {
		order.AffiliateID = &affiliateID.UUID
	}

	return &order, nil
}

func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, unit_price, quantity,
		       supplier_id, supplier_sku, source_type, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var supplierID uuid.NullUUID
		var supplierSKU sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&supplierID,
			&supplierSKU,
			&item.SourceType,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if supplierID.Valid {
			item.SupplierID = &supplierID.UUID
		}
		if supplierSKU.Valid {
			item.SupplierSKU = supplierSKU.String
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *orderRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, provider domain.PaymentProvider, providerRef string) error {
	var query string
	switch provider {
	case domain.PaymentProviderStripe:
		query = `UPDATE orders SET payment_method = $2, stripe_session_id = $3, updated_at = $4 WHERE id = $1`
	case domain.PaymentProviderPayPal:
		query = `UPDATE orders SET payment_method = $2, paypal_order_id = $3, updated_at = $4 WHERE id = $1`
	default:
		return &errors.ErrUnknownProvider{Provider: string(provider)}
	}

	_, err := r.db.ExecContext(ctx, query, id, provider, providerRef, time.Now())
	if err != nil {
		r.logger.Error("Failed to set payment session", zap.Error(err))
	}
	return err
}

func (r *orderRepository) SetPaymentIntentID(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	query := `UPDATE orders SET payment_intent_id = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, paymentIntentID, time.Now())
	if err != nil {
		r.logger.Error("Failed to set payment intent", zap.Error(err))
	}
	return err
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error {
	query := `UPDATE orders SET payment_status = $2, status = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, paymentStatus, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update payment status", zap.Error(err))
	}
	return err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
	}
	return err
}

func (r *orderRepository) SetAffiliateID(ctx context.Context, id uuid.UUID, affiliateID uuid.UUID) error {
	query := `UPDATE orders SET affiliate_id = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, affiliateID, time.Now())
	if err != nil {
		r.logger.Error("Failed to set order affiliate", zap.Error(err))
	}
	return err
}
