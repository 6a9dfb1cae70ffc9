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

type fulfillmentQueueRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFulfillmentQueueRepository creates a new fulfillment queue repository
func NewFulfillmentQueueRepository(db *sql.DB, logger *zap.Logger) *fulfillmentQueueRepository {
	return &fulfillmentQueueRepository{
		db:     db,
		logger: logger,
	}
}

func (r *fulfillmentQueueRepository) Create(ctx context.Context, entry *domain.FulfillmentQueueEntry) error {
	query := `
		INSERT INTO fulfillment_queue (
			id, order_id, supplier_id, items, status, attempt_count,
			max_attempts, last_error, next_retry_at, supplier_order_id,
			supplier_cost, processed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	itemsJSON, err := json.Marshal(entry.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.OrderID,
		entry.SupplierID,
		itemsJSON,
		entry.Status,
		entry.AttemptCount,
		entry.MaxAttempts,
		entry.LastError,
		entry.NextRetryAt,
		entry.SupplierOrderID,
		entry.SupplierCost,
		entry.ProcessedAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create fulfillment queue entry", zap.Error(err))
		return err
	}

	return nil
}

func (r *fulfillmentQueueRepository) Update(ctx context.Context, entry *domain.FulfillmentQueueEntry) error {
	query := `
		UPDATE fulfillment_queue
		SET status = $2, attempt_count = $3, last_error = $4,
		    next_retry_at = $5, supplier_order_id = $6, supplier_cost = $7,
		    processed_at = $8, updated_at = $9
		WHERE id = $1
	`

	entry.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Status,
		entry.AttemptCount,
		entry.LastError,
		entry.NextRetryAt,
		entry.SupplierOrderID,
		entry.SupplierCost,
		entry.ProcessedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update fulfillment queue entry", zap.Error(err))
		return err
	}

	return nil
}

func (r *fulfillmentQueueRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.FulfillmentQueueEntry, error) {
	query := queueSelect + ` WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query fulfillment queue", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanQueueEntries(rows)
}

func (r *fulfillmentQueueRepository) ListDueRetries(ctx context.Context, now time.Time, limit int) ([]*domain.FulfillmentQueueEntry, error) {
	query := queueSelect + `
		WHERE status = $1 AND next_retry_at IS NOT NULL AND next_retry_at <= $2
		ORDER BY next_retry_at
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, domain.FulfillmentStatusRetry, now, limit)
	if err != nil {
		r.logger.Error("Failed to query due retries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanQueueEntries(rows)
}

const queueSelect = `
	SELECT id, order_id, supplier_id, items, status, attempt_count,
	       max_attempts, last_error, next_retry_at, supplier_order_id,
	       supplier_cost, processed_at, created_at, updated_at
	FROM fulfillment_queue
`

func scanQueueEntries(rows *sql.Rows) ([]*domain.FulfillmentQueueEntry, error) {
	var entries []*domain.FulfillmentQueueEntry
	for rows.Next() {
		var entry domain.FulfillmentQueueEntry
		var supplierID uuid.NullUUID
		var itemsJSON []byte
		var lastError, supplierOrderID sql.NullString
		var supplierCost sql.NullFloat64
		var nextRetryAt, processedAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&supplierID,
			&itemsJSON,
			&entry.Status,
			&entry.AttemptCount,
			&entry.MaxAttempts,
			&lastError,
			&nextRetryAt,
			&supplierOrderID,
			&supplierCost,
			&processedAt,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if supplierID.Valid {
			entry.SupplierID = &supplierID.UUID
		}
		if len(itemsJSON) > 0 {
			if err := json.Unmarshal(itemsJSON, &entry.Items); err != nil {
				return nil, err
			}
		}
		if lastError.Valid {
			entry.LastError = &lastError.String
		}
		if nextRetryAt.Valid {
			entry.NextRetryAt = &nextRetryAt.Time
		}
		if supplierOrderID.Valid {
			entry.SupplierOrderID = &supplierOrderID.String
		}
		if supplierCost.Valid {
			entry.SupplierCost = &supplierCost.Float64
		}
		if processedAt.Valid {
			entry.ProcessedAt = &processedAt.Time
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

type supplierRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *sql.DB, logger *zap.Logger) *supplierRepository {
	return &supplierRepository{
		db:     db,
		logger: logger,
	}
}

func (r *supplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	query := `
		SELECT id, name, api_endpoint, api_key, is_active, created_at, updated_at
		FROM suppliers
		WHERE id = $1
	`

	var supplier domain.Supplier
	var apiEndpoint, apiKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&supplier.ID,
		&supplier.Name,
		&apiEndpoint,
		&apiKey,
		&supplier.IsActive,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "supplier", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get supplier", zap.Error(err))
		return nil, err
	}

	if apiEndpoint.Valid {
		supplier.APIEndpoint = &apiEndpoint.String
	}
	if apiKey.Valid {
		supplier.APIKey = &apiKey.String
	}

	return &supplier, nil
}
