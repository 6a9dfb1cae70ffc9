package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/repository"
)

// NewConnection opens a Postgres connection pool
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewRepositories creates the full repository set backed by Postgres
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Order:               NewOrderRepository(db, logger),
		FulfillmentQueue:    NewFulfillmentQueueRepository(db, logger),
		Supplier:            NewSupplierRepository(db, logger),
		Affiliate:           NewAffiliateRepository(db, logger),
		AffiliateCommission: NewAffiliateCommissionRepository(db, logger),
		AffiliateClick:      NewAffiliateClickRepository(db, logger),
		EmailLog:            NewEmailLogRepository(db, logger),
		WebhookEvent:        NewWebhookEventRepository(db, logger),
		APIClient:           NewAPIClientRepository(db, logger),
	}
}
