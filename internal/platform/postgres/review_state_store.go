package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/platform/logger"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// PostgresReviewStateStore implements the store.ReviewStateStore interface
// using a PostgreSQL database as the storage backend. The table is keyed by
// the (child_id, card_id) pair.
type PostgresReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStateStore creates a new PostgreSQL implementation of the
// ReviewStateStore interface. If logger is nil, a default logger will be used.
func NewPostgresReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure PostgresReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

// Create implements store.ReviewStateStore.Create
func (s *PostgresReviewStateStore) Create(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_states (
			child_id, card_id, interval_days, ease_factor,
			repetition_count, review_count, last_reviewed_at, due_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.ChildID,
		state.CardID,
		state.IntervalDays,
		state.EaseFactor,
		state.RepetitionCount,
		state.ReviewCount,
		nullableTime(state.LastReviewedAt),
		state.DueAt,
		state.CreatedAt,
		state.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("review state already exists",
				slog.String("child_id", state.ChildID.String()),
				slog.String("card_id", state.CardID.String()))
			return store.ErrReviewStateExists
		}

		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: child or card does not exist",
				store.ErrInvalidEntity)
		}

		log.Error("failed to create review state",
			slog.String("error", err.Error()),
			slog.String("card_id", state.CardID.String()))
		return err
	}

	return nil
}

// Get implements store.ReviewStateStore.Get
func (s *PostgresReviewStateStore) Get(
	ctx context.Context,
	childID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	query := `
		SELECT child_id, card_id, interval_days, ease_factor,
		       repetition_count, review_count, last_reviewed_at, due_at,
		       created_at, updated_at
		FROM review_states
		WHERE child_id = $1 AND card_id = $2
	`
	return scanReviewState(s.db.QueryRowContext(ctx, query, childID, cardID))
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate
//
// The FOR UPDATE clause only takes a lock when the store is bound to a
// transaction; callers go through WithTx before grading.
func (s *PostgresReviewStateStore) GetForUpdate(
	ctx context.Context,
	childID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	query := `
		SELECT child_id, card_id, interval_days, ease_factor,
		       repetition_count, review_count, last_reviewed_at, due_at,
		       created_at, updated_at
		FROM review_states
		WHERE child_id = $1 AND card_id = $2
		FOR UPDATE
	`
	return scanReviewState(s.db.QueryRowContext(ctx, query, childID, cardID))
}

// Update implements store.ReviewStateStore.Update
func (s *PostgresReviewStateStore) Update(ctx context.Context, state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_states
		SET interval_days = $1, ease_factor = $2, repetition_count = $3,
		    review_count = $4, last_reviewed_at = $5, due_at = $6,
		    updated_at = $7
		WHERE child_id = $8 AND card_id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.IntervalDays,
		state.EaseFactor,
		state.RepetitionCount,
		state.ReviewCount,
		nullableTime(state.LastReviewedAt),
		state.DueAt,
		state.UpdatedAt,
		state.ChildID,
		state.CardID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review state: %w", err)
	}

	return requireRowAffected(result, store.ErrReviewStateNotFound)
}

// Delete implements store.ReviewStateStore.Delete
func (s *PostgresReviewStateStore) Delete(
	ctx context.Context,
	childID, cardID uuid.UUID,
) error {
	query := `DELETE FROM review_states WHERE child_id = $1 AND card_id = $2`
	result, err := s.db.ExecContext(ctx, query, childID, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete review state: %w", err)
	}
	return requireRowAffected(result, store.ErrReviewStateNotFound)
}

// WithTx implements store.ReviewStateStore.WithTx
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{db: tx, logger: s.logger}
}

func scanReviewState(row *sql.Row) (*domain.ReviewState, error) {
	var state domain.ReviewState
	var lastReviewedAt sql.NullTime
	err := row.Scan(
		&state.ChildID,
		&state.CardID,
		&state.IntervalDays,
		&state.EaseFactor,
		&state.RepetitionCount,
		&state.ReviewCount,
		&lastReviewedAt,
		&state.DueAt,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewStateNotFound
		}
		return nil, fmt.Errorf("failed to get review state: %w", err)
	}
	if lastReviewedAt.Valid {
		state.LastReviewedAt = lastReviewedAt.Time
	}
	return &state, nil
}

// nullableTime maps a zero time to SQL NULL.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
