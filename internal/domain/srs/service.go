package srs

import (
	"errors"
	"time"

	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// Common errors
var (
	ErrNilState       = errors.New("review state cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
	ErrInvalidDays    = errors.New("postpone days must be at least 1")
)

// Service defines the interface for SRS algorithm operations.
type Service interface {
	// CalculateNextReview computes new scheduling state from a graded
	// outcome. The outcome is validated before any state is derived; the
	// input state is never mutated.
	CalculateNextReview(
		state *domain.ReviewState,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*domain.ReviewState, error)

	// PostponeReview pushes the next due time forward by a number of days
	// without touching the interval, ease factor or repetition count.
	PostponeReview(
		state *domain.ReviewState,
		days int,
		now time.Time,
	) (*domain.ReviewState, error)

	// InitialEaseFactor returns the ease factor assigned to brand new state.
	InitialEaseFactor() float64
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// CalculateNextReview implements Service.
func (s *defaultService) CalculateNextReview(
	state *domain.ReviewState,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	return calculateNextState(state, outcome, now, s.params), nil
}

// PostponeReview implements Service.
func (s *defaultService) PostponeReview(
	state *domain.ReviewState,
	days int,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := state.Clone()
	next.DueAt = state.DueAt.AddDate(0, 0, days)
	next.UpdatedAt = now

	return next, nil
}

// InitialEaseFactor implements Service.
func (s *defaultService) InitialEaseFactor() float64 {
	return s.params.InitialEaseFactor
}
