package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// ReviewSlotStore defines the interface for weekly review slot persistence.
type ReviewSlotStore interface {
	// Create saves a new review slot.
	// Returns ErrInvalidEntity if the owning child does not exist.
	Create(ctx context.Context, slot *domain.ReviewSlot) error

	// GetByID retrieves a slot by its unique ID.
	// Returns ErrReviewSlotNotFound if the slot does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSlot, error)

	// ListByChild returns all slots configured for a child, ordered by day
	// of week then start time.
	ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ReviewSlot, error)

	// Update modifies an existing slot.
	// Returns ErrReviewSlotNotFound if the slot does not exist.
	Update(ctx context.Context, slot *domain.ReviewSlot) error

	// Delete removes a slot.
	// Returns ErrReviewSlotNotFound if the slot does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ReviewSlotStore bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewSlotStore
}
