package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// CardStore defines the interface for flashcard persistence.
type CardStore interface {
	// Create saves a new flashcard. The card's content must already be
	// normalized and validated.
	// Returns ErrInvalidEntity if the owning child does not exist.
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateMultiple saves multiple flashcards. Run it inside
	// store.RunInTransaction via WithTx for atomicity; a bulk import that
	// should not be atomic creates records one by one instead.
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a flashcard by its unique ID, including
	// soft-deleted cards (callers decide how to treat DeletedAt).
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// Update replaces an existing card's content fields and flags.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Flashcard) error

	// SoftDelete marks a card deleted without removing its row or its
	// review state. Returns ErrCardNotFound if the card does not exist or
	// is already soft-deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Restore clears a card's soft-delete marker.
	// Returns ErrCardNotFound if the card does not exist or is not deleted.
	Restore(ctx context.Context, id uuid.UUID) error

	// ForceDelete permanently removes a card. Review state rows go with it
	// via database-level cascade. Returns ErrCardNotFound if the card does
	// not exist.
	ForceDelete(ctx context.Context, id uuid.UUID) error

	// SetActiveBulk flips the active flag on the given cards, skipping IDs
	// that do not exist. Returns the number of cards updated.
	SetActiveBulk(ctx context.Context, ids []uuid.UUID, active bool) (int64, error)

	// ListDueForChild returns the child's reviewable cards that are due at
	// or before the given moment, earliest due first with the card ID as a
	// stable tie-break, truncated to limit. Cards that have never been
	// reviewed have no state row and count as immediately due.
	ListDueForChild(
		ctx context.Context,
		childID uuid.UUID,
		now time.Time,
		limit int,
	) ([]*domain.Flashcard, error)

	// WithTx returns a new CardStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
