package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// ReviewStateStore defines the interface for per-(child, card) scheduling
// state persistence.
type ReviewStateStore interface {
	// Create saves a new review state entry.
	// Returns ErrReviewStateExists if the (child, card) pair already has one.
	Create(ctx context.Context, state *domain.ReviewState) error

	// Get retrieves review state by the combination of child ID and card ID.
	// Returns ErrReviewStateNotFound if the entry does not exist.
	// NOTE: Get takes no row lock; use GetForUpdate inside a transaction
	// when the row will be written back.
	Get(ctx context.Context, childID, cardID uuid.UUID) (*domain.ReviewState, error)

	// GetForUpdate retrieves review state with a row-level lock
	// (SELECT ... FOR UPDATE). Grading reads through here so two concurrent
	// grades of the same card serialize instead of overwriting each other.
	// Returns ErrReviewStateNotFound if the entry does not exist.
	GetForUpdate(ctx context.Context, childID, cardID uuid.UUID) (*domain.ReviewState, error)

	// Update modifies an existing review state entry.
	// Returns ErrReviewStateNotFound if the entry does not exist.
	Update(ctx context.Context, state *domain.ReviewState) error

	// Delete removes review state for the (child, card) pair.
	// Returns ErrReviewStateNotFound if the entry does not exist.
	Delete(ctx context.Context, childID, cardID uuid.UUID) error

	// WithTx returns a new ReviewStateStore bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewStateStore
}
