package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailLogEntry records one email send attempt
type EmailLogEntry struct {
	ID                uuid.UUID
	Recipient         string
	Template          string
	Subject           string
	BodyPreview       string
	Status            EmailStatus
	ProviderMessageID *string
	ErrorMessage      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
