package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/pkg/errors"
)

type webhookEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *sql.DB, logger *zap.Logger) *webhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *domain.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (event_id, provider, event_type, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now()
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = now
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		event.EventID,
		event.Provider,
		event.EventType,
		event.ProcessedAt,
		event.CreatedAt,
	)

	if isUniqueViolation(err) {
		return &errors.ErrDuplicate{Resource: "webhook event", Detail: event.EventID}
	}
	if err != nil {
		r.logger.Error("Failed to record webhook event", zap.Error(err))
		return err
	}

	return nil
}
