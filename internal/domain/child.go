package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Child-specific validation errors
var (
	// ErrChildIDEmpty is returned when a child ID is empty or nil.
	ErrChildIDEmpty = errors.New("child ID cannot be empty")

	// ErrChildUserIDEmpty is returned when a child's parent user ID is empty or nil.
	ErrChildUserIDEmpty = errors.New("child user ID cannot be empty")

	// ErrChildNameEmpty is returned when a child's name is empty.
	ErrChildNameEmpty = errors.New("child name cannot be empty")
)

// Child represents a learner profile owned by a parent account. All review
// scheduling state and review slots are scoped to a child.
type Child struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	BirthYear int       `json:"birth_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewChild creates a new Child owned by the given parent user.
// Returns an error if validation fails.
func NewChild(userID uuid.UUID, name string, birthYear int) (*Child, error) {
	now := time.Now().UTC()
	child := &Child{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		BirthYear: birthYear,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := child.Validate(); err != nil {
		return nil, err
	}

	return child, nil
}

// Validate checks if the Child has valid data.
func (c *Child) Validate() error {
	if c.ID == uuid.Nil {
		return ErrChildIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrChildUserIDEmpty
	}

	if strings.TrimSpace(c.Name) == "" {
		return ErrChildNameEmpty
	}

	return nil
}
