package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
)

type emailLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db *sql.DB, logger *zap.Logger) *emailLogRepository {
	return &emailLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *emailLogRepository) Create(ctx context.Context, entry *domain.EmailLogEntry) error {
	query := `
		INSERT INTO email_log (
			id, recipient, template, subject, body_preview, status,
			provider_message_id, error_message, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Recipient,
		entry.Template,
		entry.Subject,
		entry.BodyPreview,
		entry.Status,
		entry.ProviderMessageID,
		entry.ErrorMessage,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create email log entry", zap.Error(err))
		return err
	}

	return nil
}

func (r *emailLogRepository) MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error {
	query := `
		UPDATE email_log
		SET status = $2, provider_message_id = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.EmailStatusSent, providerMessageID, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark email sent", zap.Error(err))
	}
	return err
}

func (r *emailLogRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE email_log
		SET status = $2, error_message = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.EmailStatusFailed, errorMessage, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark email failed", zap.Error(err))
	}
	return err
}
