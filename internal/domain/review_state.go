package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewOutcome represents the graded result of a card review.
type ReviewOutcome string

// The four graded outcomes. They totally partition the input space: any
// other value is rejected before scheduling state is touched.
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

// Valid reports whether o is one of the four graded outcomes.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	default:
		return false
	}
}

// Common validation errors for ReviewState
var (
	ErrEmptyStateChildID = errors.New("review state child ID cannot be empty")
	ErrEmptyStateCardID  = errors.New("review state card ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be greater than 1.0")
)

// ReviewState tracks a child's spaced repetition scheduling state for a
// specific flashcard. It implements an SM-2 variant for determining review
// intervals. One row exists per (child, card) pair, created on the first
// graded review and mutated on every outcome after that.
type ReviewState struct {
	ChildID         uuid.UUID `json:"child_id"`
	CardID          uuid.UUID `json:"card_id"`
	IntervalDays    float64   `json:"interval_days"`    // Time until next due, in days
	EaseFactor      float64   `json:"ease_factor"`      // Growth multiplier, floor-clamped
	RepetitionCount int       `json:"repetition_count"` // Successful reviews in a row; resets on "again"
	ReviewCount     int       `json:"review_count"`     // Total graded reviews
	LastReviewedAt  time.Time `json:"last_reviewed_at"`
	DueAt           time.Time `json:"due_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewReviewState creates scheduling state for a child and card with default
// values. New cards are due immediately.
func NewReviewState(childID, cardID uuid.UUID) (*ReviewState, error) {
	now := time.Now().UTC()
	state := &ReviewState{
		ChildID:         childID,
		CardID:          cardID,
		IntervalDays:    0,
		EaseFactor:      2.5,
		RepetitionCount: 0,
		ReviewCount:     0,
		LastReviewedAt:  time.Time{},
		DueAt:           now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ReviewState has valid data.
func (s *ReviewState) Validate() error {
	if s.ChildID == uuid.Nil {
		return ErrEmptyStateChildID
	}

	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor <= 1.0 {
		return ErrInvalidEaseFactor
	}

	return nil
}

// Clone returns a copy of the state. The scheduler follows an immutable
// update pattern: transitions produce new state values instead of mutating
// the input.
func (s *ReviewState) Clone() *ReviewState {
	copied := *s
	return &copied
}
