package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/pkg/errors"
)

type affiliateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAffiliateRepository creates a new affiliate partner repository
func NewAffiliateRepository(db *sql.DB, logger *zap.Logger) *affiliateRepository {
	return &affiliateRepository{
		db:     db,
		logger: logger,
	}
}

const affiliateColumns = `
	id, code, name, email, commission_rate, status, created_at, updated_at
`

func (r *affiliateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AffiliatePartner, error) {
	query := `SELECT ` + affiliateColumns + ` FROM affiliate_partners WHERE id = $1`

	var partner domain.AffiliatePartner
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&partner.ID,
		&partner.Code,
		&partner.Name,
		&partner.Email,
		&partner.CommissionRate,
		&partner.Status,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "affiliate", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get affiliate", zap.Error(err))
		return nil, err
	}

	return &partner, nil
}

func (r *affiliateRepository) GetActiveByCode(ctx context.Context, code string) (*domain.AffiliatePartner, error) {
	query := `SELECT ` + affiliateColumns + ` FROM affiliate_partners WHERE code = $1 AND status = $2`

	var partner domain.AffiliatePartner
	err := r.db.QueryRowContext(ctx, query, code, domain.AffiliateStatusActive).Scan(
		&partner.ID,
		&partner.Code,
		&partner.Name,
		&partner.Email,
		&partner.CommissionRate,
		&partner.Status,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "affiliate", ID: code}
	}
	if err != nil {
		r.logger.Error("Failed to get affiliate by code", zap.Error(err))
		return nil, err
	}

	return &partner, nil
}

func (r *affiliateRepository) Create(ctx context.Context, partner *domain.AffiliatePartner) error {
	query := `
		INSERT INTO affiliate_partners (id, code, name, email, commission_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	if partner.CreatedAt.IsZero() {
		partner.CreatedAt = now
	}
	if partner.UpdatedAt.IsZero() {
		partner.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		partner.ID,
		partner.Code,
		partner.Name,
		partner.Email,
		partner.CommissionRate,
		partner.Status,
		partner.CreatedAt,
		partner.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return &errors.ErrDuplicate{Resource: "affiliate", Detail: partner.Code}
	}
	if err != nil {
		r.logger.Error("Failed to create affiliate", zap.Error(err))
		return err
	}

	return nil
}

type affiliateCommissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAffiliateCommissionRepository creates a new commission repository
func NewAffiliateCommissionRepository(db *sql.DB, logger *zap.Logger) *affiliateCommissionRepository {
	return &affiliateCommissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *affiliateCommissionRepository) Create(ctx context.Context, commission *domain.AffiliateCommission) error {
	query := `
		INSERT INTO affiliate_commissions (
			id, order_id, affiliate_id, click_id, order_amount,
			commission_rate, commission_amount, currency, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	if commission.ID == uuid.Nil {
		commission.ID = uuid.New()
	}
	if commission.CreatedAt.IsZero() {
		commission.CreatedAt = now
	}
	if commission.UpdatedAt.IsZero() {
		commission.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		commission.ID,
		commission.OrderID,
		commission.AffiliateID,
		commission.ClickID,
		commission.OrderAmount,
		commission.CommissionRate,
		commission.CommissionAmount,
		commission.Currency,
		commission.Status,
		commission.CreatedAt,
		commission.UpdatedAt,
	)

	// The unique index on (order_id, affiliate_id) is the authoritative
	// duplicate guard; the service-level existence check is only a
	// fast path.
	if isUniqueViolation(err) {
		return &errors.ErrDuplicate{Resource: "commission", Detail: commission.OrderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to create commission", zap.Error(err))
		return err
	}

	return nil
}

func (r *affiliateCommissionRepository) ExistsForOrderAndAffiliate(ctx context.Context, orderID, affiliateID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM affiliate_commissions WHERE order_id = $1 AND affiliate_id = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, orderID, affiliateID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check commission existence", zap.Error(err))
		return false, err
	}

	return exists, nil
}

func (r *affiliateCommissionRepository) RejectByOrderID(ctx context.Context, orderID uuid.UUID) error {
	query := `
		UPDATE affiliate_commissions
		SET status = $2, updated_at = $3
		WHERE order_id = $1 AND status = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		orderID,
		domain.CommissionStatusRejected,
		time.Now(),
		domain.CommissionStatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to reject commission", zap.Error(err))
	}
	return err
}

type affiliateClickRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAffiliateClickRepository creates a new click repository
func NewAffiliateClickRepository(db *sql.DB, logger *zap.Logger) *affiliateClickRepository {
	return &affiliateClickRepository{
		db:     db,
		logger: logger,
	}
}

func (r *affiliateClickRepository) MarkConverted(ctx context.Context, clickID, orderID uuid.UUID) error {
	query := `
		UPDATE affiliate_clicks
		SET converted = true, order_id = $2, converted_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, clickID, orderID, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark click converted", zap.Error(err))
	}
	return err
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
