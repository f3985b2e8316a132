// Package review implements the review session service: building due
// queues, gating sessions on configured weekly slots, and applying graded
// outcomes to scheduling state.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// Common errors returned by the review service.
var (
	// ErrCardNotReviewable is returned when a graded outcome targets an
	// inactive or soft-deleted card.
	ErrCardNotReviewable = errors.New("card is not reviewable")

	// ErrInvalidOutcome is returned when the submitted outcome is not one of
	// the four graded values.
	ErrInvalidOutcome = errors.New("invalid review outcome")

	// ErrNoCardsDue is returned when a session is requested and no cards are
	// due.
	ErrNoCardsDue = errors.New("no cards due for review")
)

// Session capacity defaults by slot type. A session never serves more cards
// than its slot's capacity even when more are due.
const (
	DefaultMicroSessionCards    = 5
	DefaultStandardSessionCards = 20
)

// StateSnapshot captures the scheduling numbers of a review state at one
// moment, for reporting a grading transition to the caller.
type StateSnapshot struct {
	IntervalDays    float64   `json:"interval_days"`
	EaseFactor      float64   `json:"ease_factor"`
	RepetitionCount int       `json:"repetition_count"`
	DueAt           time.Time `json:"due_at"`
}

// Transition reports the effect of one graded outcome: the scheduling state
// before and after. FirstReview marks outcomes that created the state row.
type Transition struct {
	ChildID     uuid.UUID            `json:"child_id"`
	CardID      uuid.UUID            `json:"card_id"`
	Outcome     domain.ReviewOutcome `json:"outcome"`
	FirstReview bool                 `json:"first_review"`
	Before      StateSnapshot        `json:"before"`
	After       StateSnapshot        `json:"after"`
}

// Session is a bounded run of due cards inside an open slot window. Slot is
// nil when the child has no slots configured and sessions are always allowed.
type Session struct {
	ChildID   uuid.UUID           `json:"child_id"`
	Slot      *domain.ReviewSlot  `json:"slot,omitempty"`
	Capacity  int                 `json:"capacity"`
	Cards     []*domain.Flashcard `json:"cards"`
	StartedAt time.Time           `json:"started_at"`
}

// Service provides review queue and grading operations.
type Service interface {
	// BuildQueue returns the child's due cards, earliest due first,
	// truncated to limit. Never-reviewed cards count as immediately due.
	BuildQueue(
		ctx context.Context,
		childID uuid.UUID,
		now time.Time,
		limit int,
	) ([]*domain.Flashcard, error)

	// SlotForTime reports whether a session may start at the given moment
	// and which slot window (if any) admits it. A child with no configured
	// slots is always allowed.
	SlotForTime(
		ctx context.Context,
		childID uuid.UUID,
		now time.Time,
	) (allowed bool, slot *domain.ReviewSlot, err error)

	// StartSession builds a session from the due queue, sized by the open
	// slot's type. Returns service.ErrOutsideReviewSlot if every configured
	// window is closed, ErrNoCardsDue if the queue is empty.
	StartSession(
		ctx context.Context,
		childID uuid.UUID,
		now time.Time,
	) (*Session, error)

	// SubmitOutcome applies a graded outcome to the (child, card) scheduling
	// state, creating it on the first grade. The read-modify-write runs in a
	// transaction with the state row locked.
	SubmitOutcome(
		ctx context.Context,
		childID, cardID uuid.UUID,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*Transition, error)

	// PostponeCard pushes a card's due time forward by whole days without
	// touching its interval or ease.
	PostponeCard(
		ctx context.Context,
		childID, cardID uuid.UUID,
		days int,
		now time.Time,
	) (*domain.ReviewState, error)
}

func snapshot(state *domain.ReviewState) StateSnapshot {
	return StateSnapshot{
		IntervalDays:    state.IntervalDays,
		EaseFactor:      state.EaseFactor,
		RepetitionCount: state.RepetitionCount,
		DueAt:           state.DueAt,
	}
}
