package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stwalsh4118/underwriter/internal/models"
)

// DealRepository defines the interface for deal history storage.
type DealRepository interface {
	// Save inserts or replaces a deal.
	Save(ctx context.Context, deal *models.Deal) error

	// FindByID returns the deal with the given ID.
	// Returns nil, nil if no deal is found (not an error).
	// Returns error only for actual storage failures.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)

	// List returns all deals, newest first.
	// Returns an empty slice when there are none.
	List(ctx context.Context) ([]models.Deal, error)
}

// BuyBoxRepository stores the single set of screening criteria.
type BuyBoxRepository interface {
	// Get returns the saved criteria, or nil, nil when none were saved yet.
	Get(ctx context.Context) (*models.BuyBox, error)

	// Save replaces the saved criteria.
	Save(ctx context.Context, box models.BuyBox) error
}
