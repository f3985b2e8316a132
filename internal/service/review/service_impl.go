package review

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/domain/srs"
	"github.com/homeroomhq/homeroom-api/internal/platform/logger"
	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// Config sizes review sessions. Zero values select the defaults.
type Config struct {
	MicroSessionCards    int
	StandardSessionCards int
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db         *sql.DB
	cardStore  store.CardStore
	stateStore store.ReviewStateStore
	slotStore  store.ReviewSlotStore
	srsService srs.Service
	cfg        Config
	logger     *slog.Logger
}

// NewService creates a review service. db may be nil in tests, in which case
// grading runs against the stores directly instead of inside a transaction.
func NewService(
	db *sql.DB,
	cardStore store.CardStore,
	stateStore store.ReviewStateStore,
	slotStore store.ReviewSlotStore,
	srsService srs.Service,
	cfg Config,
	logger *slog.Logger,
) Service {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil")
	}
	if slotStore == nil {
		panic("slotStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if cfg.MicroSessionCards <= 0 {
		cfg.MicroSessionCards = DefaultMicroSessionCards
	}
	if cfg.StandardSessionCards <= 0 {
		cfg.StandardSessionCards = DefaultStandardSessionCards
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		db:         db,
		cardStore:  cardStore,
		stateStore: stateStore,
		slotStore:  slotStore,
		srsService: srsService,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "review_service")),
	}
}

// BuildQueue implements Service.BuildQueue.
func (s *serviceImpl) BuildQueue(
	ctx context.Context,
	childID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = s.cfg.StandardSessionCards
	}

	cards, err := s.cardStore.ListDueForChild(ctx, childID, now, limit)
	if err != nil {
		log.Error("failed to build review queue",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()))
		return nil, fmt.Errorf("failed to build review queue: %w", err)
	}

	log.Debug("review queue built",
		slog.String("child_id", childID.String()),
		slog.Int("card_count", len(cards)))
	return cards, nil
}

// SlotForTime implements Service.SlotForTime.
//
// A child with no configured slots is always allowed: slots restrict an
// otherwise-open schedule, they are not an allowlist that starts empty.
func (s *serviceImpl) SlotForTime(
	ctx context.Context,
	childID uuid.UUID,
	now time.Time,
) (bool, *domain.ReviewSlot, error) {
	slots, err := s.slotStore.ListByChild(ctx, childID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to list review slots: %w", err)
	}

	if len(slots) == 0 {
		return true, nil, nil
	}

	for _, slot := range slots {
		if slot.Contains(now) {
			return true, slot, nil
		}
	}
	return false, nil, nil
}

// StartSession implements Service.StartSession.
func (s *serviceImpl) StartSession(
	ctx context.Context,
	childID uuid.UUID,
	now time.Time,
) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	allowed, slot, err := s.SlotForTime(ctx, childID, now)
	if err != nil {
		return nil, err
	}
	if !allowed {
		log.Debug("session refused outside slot windows",
			slog.String("child_id", childID.String()),
			slog.Time("at", now))
		return nil, service.ErrOutsideReviewSlot
	}

	capacity := s.cfg.StandardSessionCards
	if slot != nil && slot.SlotType == domain.SlotTypeMicro {
		capacity = s.cfg.MicroSessionCards
	}

	cards, err := s.BuildQueue(ctx, childID, now, capacity)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoCardsDue
	}

	log.Info("review session started",
		slog.String("child_id", childID.String()),
		slog.Int("capacity", capacity),
		slog.Int("card_count", len(cards)))

	return &Session{
		ChildID:   childID,
		Slot:      slot,
		Capacity:  capacity,
		Cards:     cards,
		StartedAt: now,
	}, nil
}

// SubmitOutcome implements Service.SubmitOutcome.
func (s *serviceImpl) SubmitOutcome(
	ctx context.Context,
	childID, cardID uuid.UUID,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*Transition, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !outcome.Valid() {
		log.Warn("invalid review outcome",
			slog.String("child_id", childID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("outcome", string(outcome)))
		return nil, ErrInvalidOutcome
	}

	var transition *Transition
	err := s.runInTransaction(ctx, func(
		ctx context.Context,
		cardStore store.CardStore,
		stateStore store.ReviewStateStore,
	) error {
		card, err := cardStore.GetByID(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return store.ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}

		if card.ChildID != childID {
			log.Warn("child does not own card",
				slog.String("child_id", childID.String()),
				slog.String("card_id", cardID.String()),
				slog.String("owner_id", card.ChildID.String()))
			return service.ErrNotOwned
		}

		if !card.Reviewable() {
			return ErrCardNotReviewable
		}

		firstReview := false
		state, err := stateStore.GetForUpdate(ctx, childID, cardID)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("failed to get review state: %w", err)
			}
			state, err = domain.NewReviewState(childID, cardID)
			if err != nil {
				return fmt.Errorf("failed to create review state: %w", err)
			}
			state.EaseFactor = s.srsService.InitialEaseFactor()
			firstReview = true
		}

		next, err := s.srsService.CalculateNextReview(state, outcome, now)
		if err != nil {
			return fmt.Errorf("failed to calculate next review: %w", err)
		}

		if firstReview {
			err = stateStore.Create(ctx, next)
		} else {
			err = stateStore.Update(ctx, next)
		}
		if err != nil {
			return fmt.Errorf("failed to save review state: %w", err)
		}

		transition = &Transition{
			ChildID:     childID,
			CardID:      cardID,
			Outcome:     outcome,
			FirstReview: firstReview,
			Before:      snapshot(state),
			After:       snapshot(next),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("review outcome applied",
		slog.String("child_id", childID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("outcome", string(outcome)),
		slog.Float64("interval_days", transition.After.IntervalDays),
		slog.Float64("ease_factor", transition.After.EaseFactor),
		slog.Time("due_at", transition.After.DueAt))

	return transition, nil
}

// PostponeCard implements Service.PostponeCard.
func (s *serviceImpl) PostponeCard(
	ctx context.Context,
	childID, cardID uuid.UUID,
	days int,
	now time.Time,
) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var postponed *domain.ReviewState
	err := s.runInTransaction(ctx, func(
		ctx context.Context,
		cardStore store.CardStore,
		stateStore store.ReviewStateStore,
	) error {
		state, err := stateStore.GetForUpdate(ctx, childID, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return store.ErrReviewStateNotFound
			}
			return fmt.Errorf("failed to get review state: %w", err)
		}

		next, err := s.srsService.PostponeReview(state, days, now)
		if err != nil {
			return err
		}

		if err := stateStore.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to save review state: %w", err)
		}

		postponed = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("card review postponed",
		slog.String("child_id", childID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("due_at", postponed.DueAt))

	return postponed, nil
}

// runInTransaction executes fn with transaction-bound stores when a database
// handle exists, or directly against the configured stores otherwise.
func (s *serviceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, store.CardStore, store.ReviewStateStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.cardStore, s.stateStore)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.cardStore.WithTx(tx), s.stateStore.WithTx(tx))
	})
}
