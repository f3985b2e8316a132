package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
	"github.com/homeroomhq/homeroom-api/internal/generation"
	"github.com/homeroomhq/homeroom-api/internal/platform/logger"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ImportFailure records why one record of a bulk import was rejected.
type ImportFailure struct {
	// Index is the zero-based position of the record in the submitted batch.
	Index  int                     `json:"index"`
	Errors cardcontent.FieldErrors `json:"errors"`
}

// ImportResult summarizes a bulk import: which records became cards and
// which were rejected. A batch with failures still creates its valid cards.
type ImportResult struct {
	Created []*domain.Flashcard `json:"created"`
	Failed  []ImportFailure     `json:"failed"`
}

// CardService provides flashcard authoring and lifecycle operations.
// Mutating operations take raw card fields and run them through the
// normalize-and-validate pipeline; a non-empty FieldErrors return means the
// input was rejected and nothing was persisted.
type CardService interface {
	// CreateCard validates raw fields and persists a new card for the child.
	CreateCard(
		ctx context.Context,
		childID, topicID uuid.UUID,
		raw cardcontent.RawFields,
	) (*domain.Flashcard, cardcontent.FieldErrors, error)

	// UpdateCard validates raw fields and replaces the card's content.
	// Soft-deleted cards cannot be updated; restore first.
	UpdateCard(
		ctx context.Context,
		cardID uuid.UUID,
		raw cardcontent.RawFields,
	) (*domain.Flashcard, cardcontent.FieldErrors, error)

	// GetCard retrieves a card by ID, including soft-deleted cards.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Flashcard, error)

	// ImportCards validates each record of a batch independently and
	// persists the valid ones in a single transaction. Invalid records are
	// reported per-index with their full error sets; they never block the
	// rest of the batch.
	ImportCards(
		ctx context.Context,
		childID, topicID uuid.UUID,
		records []cardcontent.RawFields,
		source string,
	) (*ImportResult, error)

	// SoftDeleteCard marks a card deleted, keeping its review state.
	SoftDeleteCard(ctx context.Context, cardID uuid.UUID) error

	// RestoreCard clears a card's soft-delete marker.
	RestoreCard(ctx context.Context, cardID uuid.UUID) error

	// ForceDeleteCard permanently removes a card and its review state.
	ForceDeleteCard(ctx context.Context, cardID uuid.UUID) error

	// SetActiveBulk flips the active flag on a set of cards and returns how
	// many were updated.
	SetActiveBulk(ctx context.Context, ids []uuid.UUID, active bool) (int64, error)

	// GenerateDrafts produces draft card fields from source text. Drafts are
	// not persisted; the caller reviews them and submits the keepers through
	// CreateCard or ImportCards. Returns ErrGenerationUnavailable when no
	// generator is configured.
	GenerateDrafts(
		ctx context.Context,
		sourceText string,
		count int,
	) ([]cardcontent.RawFields, error)
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	db        *sql.DB
	cardStore store.CardStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewCardService creates a new CardService. db may be nil in tests, in which
// case bulk imports run without a wrapping transaction. generator may be nil
// when draft generation is not configured.
func NewCardService(
	db *sql.DB,
	cardStore store.CardStore,
	generator generation.Generator,
	logger *slog.Logger,
) (CardService, error) {
	if cardStore == nil {
		return nil, fmt.Errorf("cardStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		db:        db,
		cardStore: cardStore,
		generator: generator,
		logger:    logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	childID, topicID uuid.UUID,
	raw cardcontent.RawFields,
) (*domain.Flashcard, cardcontent.FieldErrors, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fields := cardcontent.Normalize(raw)
	_, fieldErrs := cardcontent.Validate(fields)
	if !fieldErrs.Empty() {
		log.Debug("card rejected by validation",
			slog.String("child_id", childID.String()),
			slog.String("card_type", string(fields.CardType)),
			slog.Int("error_fields", len(fieldErrs)))
		return nil, fieldErrs, nil
	}

	card, err := domain.NewFlashcard(childID, topicID, fields, "")
	if err != nil {
		return nil, nil, NewCardServiceError("create_card", "failed to construct card", err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		log.Error("failed to persist card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return nil, nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	return card, nil, nil
}

// UpdateCard implements CardService.UpdateCard
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	cardID uuid.UUID,
	raw cardcontent.RawFields,
) (*domain.Flashcard, cardcontent.FieldErrors, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, store.ErrCardNotFound
		}
		return nil, nil, NewCardServiceError("update_card", "failed to load card", err)
	}

	if card.DeletedAt != nil {
		return nil, nil, ErrCardDeleted
	}

	fields := cardcontent.Normalize(raw)
	_, fieldErrs := cardcontent.Validate(fields)
	if !fieldErrs.Empty() {
		return nil, fieldErrs, nil
	}

	card.UpdateContent(fields)
	if err := s.cardStore.Update(ctx, card); err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, nil, NewCardServiceError("update_card", "failed to save card", err)
	}

	return card, nil, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.Flashcard, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrCardNotFound
		}
		return nil, NewCardServiceError("get_card", "failed to retrieve card", err)
	}
	return card, nil
}

// ImportCards implements CardService.ImportCards
func (s *cardServiceImpl) ImportCards(
	ctx context.Context,
	childID, topicID uuid.UUID,
	records []cardcontent.RawFields,
	source string,
) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := &ImportResult{}
	cards := make([]*domain.Flashcard, 0, len(records))

	for i, raw := range records {
		fields := cardcontent.Normalize(raw)
		_, fieldErrs := cardcontent.Validate(fields)
		if !fieldErrs.Empty() {
			result.Failed = append(result.Failed, ImportFailure{
				Index:  i,
				Errors: fieldErrs,
			})
			continue
		}

		card, err := domain.NewFlashcard(childID, topicID, fields, source)
		if err != nil {
			return nil, NewCardServiceError("import_cards", "failed to construct card", err)
		}
		cards = append(cards, card)
	}

	if len(cards) > 0 {
		if err := s.createAll(ctx, cards); err != nil {
			log.Error("failed to persist imported cards",
				slog.String("error", err.Error()),
				slog.Int("card_count", len(cards)))
			return nil, NewCardServiceError("import_cards", "failed to save cards", err)
		}
	}

	result.Created = cards
	log.Info("bulk import completed",
		slog.String("child_id", childID.String()),
		slog.Int("created", len(result.Created)),
		slog.Int("rejected", len(result.Failed)))
	return result, nil
}

// createAll persists cards atomically when a database handle is available.
func (s *cardServiceImpl) createAll(ctx context.Context, cards []*domain.Flashcard) error {
	if s.db == nil {
		return s.cardStore.CreateMultiple(ctx, cards)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.cardStore.WithTx(tx).CreateMultiple(ctx, cards)
	})
}

// SoftDeleteCard implements CardService.SoftDeleteCard
func (s *cardServiceImpl) SoftDeleteCard(ctx context.Context, cardID uuid.UUID) error {
	if err := s.cardStore.SoftDelete(ctx, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrCardNotFound
		}
		return NewCardServiceError("soft_delete_card", "failed to delete card", err)
	}
	return nil
}

// RestoreCard implements CardService.RestoreCard
func (s *cardServiceImpl) RestoreCard(ctx context.Context, cardID uuid.UUID) error {
	if err := s.cardStore.Restore(ctx, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrCardNotFound
		}
		return NewCardServiceError("restore_card", "failed to restore card", err)
	}
	return nil
}

// ForceDeleteCard implements CardService.ForceDeleteCard
func (s *cardServiceImpl) ForceDeleteCard(ctx context.Context, cardID uuid.UUID) error {
	if err := s.cardStore.ForceDelete(ctx, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrCardNotFound
		}
		return NewCardServiceError("force_delete_card", "failed to delete card", err)
	}
	return nil
}

// SetActiveBulk implements CardService.SetActiveBulk
func (s *cardServiceImpl) SetActiveBulk(
	ctx context.Context,
	ids []uuid.UUID,
	active bool,
) (int64, error) {
	updated, err := s.cardStore.SetActiveBulk(ctx, ids, active)
	if err != nil {
		return 0, NewCardServiceError("set_active_bulk", "failed to update cards", err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("bulk status update completed",
		slog.Int("requested", len(ids)),
		slog.Int64("updated", updated),
		slog.Bool("active", active))
	return updated, nil
}

// GenerateDrafts implements CardService.GenerateDrafts
func (s *cardServiceImpl) GenerateDrafts(
	ctx context.Context,
	sourceText string,
	count int,
) ([]cardcontent.RawFields, error) {
	if s.generator == nil {
		return nil, ErrGenerationUnavailable
	}

	drafts, err := s.generator.GenerateDrafts(ctx, sourceText, count)
	if err != nil {
		return nil, NewCardServiceError("generate_drafts", "generation failed", err)
	}
	return drafts, nil
}
