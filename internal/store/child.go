package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// ChildStore defines the interface for child profile persistence.
type ChildStore interface {
	// Create saves a new child profile.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, child *domain.Child) error

	// GetByID retrieves a child by their unique ID.
	// Returns ErrChildNotFound if the child does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Child, error)

	// ListByUser returns all children owned by the given parent account,
	// oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Child, error)

	// Update modifies an existing child profile.
	// Returns ErrChildNotFound if the child does not exist.
	Update(ctx context.Context, child *domain.Child) error

	// Delete removes a child profile. Associated flashcards, review state
	// and slots are removed by database-level cascade.
	// Returns ErrChildNotFound if the child does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ChildStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ChildStore
}
