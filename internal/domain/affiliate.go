package domain

import (
	"time"

	"github.com/google/uuid"
)

// AffiliatePartner represents a referral partner account
type AffiliatePartner struct {
	ID             uuid.UUID
	Code           string
	Name           string
	Email          string
	CommissionRate float64 // percentage, e.g. 10 means 10%
	Status         AffiliateStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AffiliateCommission represents a commission earned on one order.
// At most one row exists per (order, affiliate) pair, enforced by a
// unique constraint.
type AffiliateCommission struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	AffiliateID      uuid.UUID
	ClickID          *uuid.UUID
	OrderAmount      float64 // order total excluding shipping
	CommissionRate   float64
	CommissionAmount float64
	Currency         string
	Status           CommissionStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AffiliateClick represents a tracked click on an affiliate link
type AffiliateClick struct {
	ID          uuid.UUID
	AffiliateID uuid.UUID
	LandingPage string
	Converted   bool
	OrderID     *uuid.UUID
	CreatedAt   time.Time
	ConvertedAt *time.Time
}
