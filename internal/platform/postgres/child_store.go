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

// PostgresChildStore implements the store.ChildStore interface
// using a PostgreSQL database as the storage backend.
type PostgresChildStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChildStore creates a new PostgreSQL implementation of the
// ChildStore interface. If logger is nil, a default logger will be used.
func NewPostgresChildStore(db store.DBTX, logger *slog.Logger) *PostgresChildStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChildStore{
		db:     db,
		logger: logger.With(slog.String("component", "child_store")),
	}
}

// Ensure PostgresChildStore implements store.ChildStore interface
var _ store.ChildStore = (*PostgresChildStore)(nil)

// Create implements store.ChildStore.Create
func (s *PostgresChildStore) Create(ctx context.Context, child *domain.Child) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := child.Validate(); err != nil {
		log.Warn("child validation failed during create",
			slog.String("error", err.Error()),
			slog.String("child_id", child.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO children (id, user_id, name, birth_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		child.ID,
		child.UserID,
		child.Name,
		nullableInt(child.BirthYear),
		child.CreatedAt,
		child.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during child creation",
				slog.String("child_id", child.ID.String()),
				slog.String("user_id", child.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, child.UserID)
		}

		log.Error("failed to create child",
			slog.String("error", err.Error()),
			slog.String("child_id", child.ID.String()))
		return err
	}

	log.Info("child created successfully",
		slog.String("child_id", child.ID.String()),
		slog.String("user_id", child.UserID.String()))
	return nil
}

// GetByID implements store.ChildStore.GetByID
func (s *PostgresChildStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Child, error) {
	query := `
		SELECT id, user_id, name, birth_year, created_at, updated_at
		FROM children
		WHERE id = $1
	`
	return scanChild(s.db.QueryRowContext(ctx, query, id))
}

// ListByUser implements store.ChildStore.ListByUser
func (s *PostgresChildStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Child, error) {
	query := `
		SELECT id, user_id, name, birth_year, created_at, updated_at
		FROM children
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var children []*domain.Child
	for rows.Next() {
		child, err := scanChildRows(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate children: %w", err)
	}
	return children, nil
}

// Update implements store.ChildStore.Update
func (s *PostgresChildStore) Update(ctx context.Context, child *domain.Child) error {
	if err := child.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE children
		SET name = $1, birth_year = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		child.Name,
		nullableInt(child.BirthYear),
		child.UpdatedAt,
		child.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}

	return requireRowAffected(result, store.ErrChildNotFound)
}

// Delete implements store.ChildStore.Delete
func (s *PostgresChildStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return requireRowAffected(result, store.ErrChildNotFound)
}

// WithTx implements store.ChildStore.WithTx
func (s *PostgresChildStore) WithTx(tx *sql.Tx) store.ChildStore {
	return &PostgresChildStore{db: tx, logger: s.logger}
}

// rowScanner is the subset of *sql.Row and *sql.Rows used by scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row *sql.Row) (*domain.Child, error) {
	child, err := scanChildRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrChildNotFound
		}
		return nil, err
	}
	return child, nil
}

func scanChildRows(row rowScanner) (*domain.Child, error) {
	var child domain.Child
	var birthYear sql.NullInt64
	err := row.Scan(
		&child.ID,
		&child.UserID,
		&child.Name,
		&birthYear,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan child: %w", err)
	}
	if birthYear.Valid {
		child.BirthYear = int(birthYear.Int64)
	}
	return &child, nil
}

// nullableInt maps a zero value to SQL NULL.
func nullableInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

// requireRowAffected converts a zero-row write into the given not-found
// error.
func requireRowAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
