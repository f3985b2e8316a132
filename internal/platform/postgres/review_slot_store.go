package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/platform/logger"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// PostgresReviewSlotStore implements the store.ReviewSlotStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewSlotStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewSlotStore creates a new PostgreSQL implementation of the
// ReviewSlotStore interface. If logger is nil, a default logger will be used.
func NewPostgresReviewSlotStore(db store.DBTX, logger *slog.Logger) *PostgresReviewSlotStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewSlotStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_slot_store")),
	}
}

// Ensure PostgresReviewSlotStore implements store.ReviewSlotStore interface
var _ store.ReviewSlotStore = (*PostgresReviewSlotStore)(nil)

// Create implements store.ReviewSlotStore.Create
func (s *PostgresReviewSlotStore) Create(ctx context.Context, slot *domain.ReviewSlot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := slot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_slots (
			id, child_id, day_of_week, start_minutes, end_minutes,
			slot_type, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		slot.ID,
		slot.ChildID,
		slot.DayOfWeek,
		slot.StartMinutes,
		slot.EndMinutes,
		slot.SlotType,
		slot.CreatedAt,
		slot.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during slot creation",
				slog.String("slot_id", slot.ID.String()),
				slog.String("child_id", slot.ChildID.String()))
			return fmt.Errorf("%w: child with ID %s not found",
				store.ErrInvalidEntity, slot.ChildID)
		}

		log.Error("failed to create review slot",
			slog.String("error", err.Error()),
			slog.String("slot_id", slot.ID.String()))
		return err
	}

	return nil
}

// GetByID implements store.ReviewSlotStore.GetByID
func (s *PostgresReviewSlotStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.ReviewSlot, error) {
	query := `
		SELECT id, child_id, day_of_week, start_minutes, end_minutes,
		       slot_type, created_at, updated_at
		FROM review_slots
		WHERE id = $1
	`
	slot, err := scanReviewSlot(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

// ListByChild implements store.ReviewSlotStore.ListByChild
func (s *PostgresReviewSlotStore) ListByChild(
	ctx context.Context,
	childID uuid.UUID,
) ([]*domain.ReviewSlot, error) {
	query := `
		SELECT id, child_id, day_of_week, start_minutes, end_minutes,
		       slot_type, created_at, updated_at
		FROM review_slots
		WHERE child_id = $1
		ORDER BY day_of_week ASC, start_minutes ASC
	`
	rows, err := s.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review slots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slots []*domain.ReviewSlot
	for rows.Next() {
		slot, err := scanReviewSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review slots: %w", err)
	}
	return slots, nil
}

// Update implements store.ReviewSlotStore.Update
func (s *PostgresReviewSlotStore) Update(ctx context.Context, slot *domain.ReviewSlot) error {
	if err := slot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_slots
		SET day_of_week = $1, start_minutes = $2, end_minutes = $3,
		    slot_type = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		slot.DayOfWeek,
		slot.StartMinutes,
		slot.EndMinutes,
		slot.SlotType,
		slot.UpdatedAt,
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review slot: %w", err)
	}

	return requireRowAffected(result, store.ErrReviewSlotNotFound)
}

// Delete implements store.ReviewSlotStore.Delete
func (s *PostgresReviewSlotStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM review_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review slot: %w", err)
	}
	return requireRowAffected(result, store.ErrReviewSlotNotFound)
}

// WithTx implements store.ReviewSlotStore.WithTx
func (s *PostgresReviewSlotStore) WithTx(tx *sql.Tx) store.ReviewSlotStore {
	return &PostgresReviewSlotStore{db: tx, logger: s.logger}
}

func scanReviewSlot(row rowScanner) (*domain.ReviewSlot, error) {
	var slot domain.ReviewSlot
	err := row.Scan(
		&slot.ID,
		&slot.ChildID,
		&slot.DayOfWeek,
		&slot.StartMinutes,
		&slot.EndMinutes,
		&slot.SlotType,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan review slot: %w", err)
	}
	return &slot, nil
}
