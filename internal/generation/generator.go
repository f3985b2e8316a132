package generation

import (
	"context"

	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
)

// Generator defines the interface for producing draft flashcards from source
// text. Implementations return raw card fields: drafts still pass through the
// same normalize-and-validate pipeline as hand-authored cards before anything
// is persisted.
type Generator interface {
	// GenerateDrafts creates draft card fields from the provided source text.
	// count is a hint for how many cards to produce; implementations may
	// return fewer. Returns ErrEmptySourceText, ErrContentBlocked,
	// ErrInvalidResponse or ErrTransientFailure on failure.
	GenerateDrafts(ctx context.Context, sourceText string, count int) ([]cardcontent.RawFields, error)
}
