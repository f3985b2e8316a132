package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
)

// Flashcard-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardChildIDEmpty is returned when a card's child ID is empty or nil.
	ErrCardChildIDEmpty = errors.New("card child ID cannot be empty")
)

// Flashcard is a learning item owned by a child. TopicID is an opaque
// reference into the curriculum subsystem; the scheduler only cares about
// the child axis. Content holds the normalized, type-consistent variant
// fields produced by cardcontent.Normalize.
type Flashcard struct {
	ID           uuid.UUID          `json:"id"`
	ChildID      uuid.UUID          `json:"child_id"`
	TopicID      uuid.UUID          `json:"topic_id,omitempty"`
	Content      cardcontent.Fields `json:"content"`
	IsActive     bool               `json:"is_active"`
	ImportSource string             `json:"import_source,omitempty"`
	DeletedAt    *time.Time         `json:"deleted_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewFlashcard creates a new active Flashcard from already-normalized and
// validated content fields. Returns an error if identity validation fails;
// content validation is the caller's responsibility via cardcontent.Validate.
func NewFlashcard(
	childID, topicID uuid.UUID,
	content cardcontent.Fields,
	importSource string,
) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:           uuid.New(),
		ChildID:      childID,
		TopicID:      topicID,
		Content:      content,
		IsActive:     true,
		ImportSource: importSource,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks the card's identity fields. Content-level rules live in
// cardcontent.Validate and are applied before a card reaches this point.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.ChildID == uuid.Nil {
		return ErrCardChildIDEmpty
	}

	return nil
}

// UpdateContent replaces the card's content fields and bumps the update
// timestamp. The caller must have validated the fields first.
func (c *Flashcard) UpdateContent(content cardcontent.Fields) {
	c.Content = content
	c.UpdatedAt = time.Now().UTC()
}

// Reviewable reports whether the card can surface in a review queue:
// active and not soft-deleted.
func (c *Flashcard) Reviewable() bool {
	return c.IsActive && c.DeletedAt == nil
}
