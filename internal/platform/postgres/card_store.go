package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
	"github.com/homeroomhq/homeroom-api/internal/platform/logger"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// cardColumns is the column list shared by every flashcard SELECT.
const cardColumns = `
	id, child_id, topic_id, card_type, question, answer, hint,
	choices, correct_choices, true_false_answer, cloze_text, cloze_answers,
	question_image_url, answer_image_url, occlusion_data,
	difficulty, tags, is_active, import_source, deleted_at,
	created_at, updated_at
`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend. Variant list fields
// (choices, cloze answers, occlusion regions, tags) are stored as JSONB.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	args, err := cardInsertArgs(card)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO flashcards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during card creation",
				slog.String("card_id", card.ID.String()),
				slog.String("child_id", card.ChildID.String()))
			return fmt.Errorf("%w: child with ID %s not found",
				store.ErrInvalidEntity, card.ChildID)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("child_id", card.ChildID.String()),
		slog.String("card_type", string(card.Content.CardType)))
	return nil
}

// CreateMultiple implements store.CardStore.CreateMultiple
func (s *PostgresCardStore) CreateMultiple(
	ctx context.Context,
	cards []*domain.Flashcard,
) error {
	for _, card := range cards {
		if err := s.Create(ctx, card); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Flashcard, error) {
	query := `SELECT ` + cardColumns + ` FROM flashcards WHERE id = $1`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// Update implements store.CardStore.Update
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	choices, correct, clozeAnswers, occlusion, tags, err := cardJSONColumns(card.Content)
	if err != nil {
		return err
	}

	query := `
		UPDATE flashcards
		SET topic_id = $1, card_type = $2, question = $3, answer = $4,
		    hint = $5, choices = $6, correct_choices = $7,
		    true_false_answer = $8, cloze_text = $9, cloze_answers = $10,
		    question_image_url = $11, answer_image_url = $12,
		    occlusion_data = $13, difficulty = $14, tags = $15,
		    is_active = $16, updated_at = $17
		WHERE id = $18
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		nullableUUID(card.TopicID),
		card.Content.CardType,
		card.Content.Question,
		card.Content.Answer,
		nullableString(card.Content.Hint),
		choices,
		correct,
		nullableString(card.Content.TrueFalseAnswer),
		nullableString(card.Content.ClozeText),
		clozeAnswers,
		nullableString(card.Content.QuestionImageURL),
		nullableString(card.Content.AnswerImageURL),
		occlusion,
		card.Content.Difficulty,
		tags,
		card.IsActive,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	return requireRowAffected(result, store.ErrCardNotFound)
}

// SoftDelete implements store.CardStore.SoftDelete
func (s *PostgresCardStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE flashcards
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to soft delete card: %w", err)
	}
	return requireRowAffected(result, store.ErrCardNotFound)
}

// Restore implements store.CardStore.Restore
func (s *PostgresCardStore) Restore(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE flashcards
		SET deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND deleted_at IS NOT NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to restore card: %w", err)
	}
	return requireRowAffected(result, store.ErrCardNotFound)
}

// ForceDelete implements store.CardStore.ForceDelete
// Review state rows are removed by ON DELETE CASCADE on the schema.
func (s *PostgresCardStore) ForceDelete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to force delete card: %w", err)
	}
	return requireRowAffected(result, store.ErrCardNotFound)
}

// SetActiveBulk implements store.CardStore.SetActiveBulk
func (s *PostgresCardStore) SetActiveBulk(
	ctx context.Context,
	ids []uuid.UUID,
	active bool,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE flashcards
		SET is_active = $1, updated_at = $2
		WHERE id = ANY($3)
	`
	result, err := s.db.ExecContext(ctx, query, active, time.Now().UTC(), ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update card status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// ListDueForChild implements store.CardStore.ListDueForChild
//
// Cards without a review state row have never been graded and are due
// immediately; they sort by their creation time so authoring order is the
// stable secondary key the queue contract asks for.
func (s *PostgresCardStore) ListDueForChild(
	ctx context.Context,
	childID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + prefixedCardColumns("fc") + `
		FROM flashcards fc
		LEFT JOIN review_states rs
		       ON rs.card_id = fc.id AND rs.child_id = fc.child_id
		WHERE fc.child_id = $1
		  AND fc.is_active = TRUE
		  AND fc.deleted_at IS NULL
		  AND (rs.card_id IS NULL OR rs.due_at <= $2)
		ORDER BY COALESCE(rs.due_at, fc.created_at) ASC, fc.id ASC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, childID, now, limit)
	if err != nil {
		log.Error("failed to query due cards",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()))
		return nil, fmt.Errorf("failed to query due cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Flashcard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due cards: %w", err)
	}
	return cards, nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

// prefixedCardColumns qualifies cardColumns with a table alias for joins.
func prefixedCardColumns(alias string) string {
	return alias + ".id, " + alias + ".child_id, " + alias + ".topic_id, " +
		alias + ".card_type, " + alias + ".question, " + alias + ".answer, " +
		alias + ".hint, " + alias + ".choices, " + alias + ".correct_choices, " +
		alias + ".true_false_answer, " + alias + ".cloze_text, " +
		alias + ".cloze_answers, " + alias + ".question_image_url, " +
		alias + ".answer_image_url, " + alias + ".occlusion_data, " +
		alias + ".difficulty, " + alias + ".tags, " + alias + ".is_active, " +
		alias + ".import_source, " + alias + ".deleted_at, " +
		alias + ".created_at, " + alias + ".updated_at"
}

func cardInsertArgs(card *domain.Flashcard) ([]any, error) {
	choices, correct, clozeAnswers, occlusion, tags, err := cardJSONColumns(card.Content)
	if err != nil {
		return nil, err
	}

	return []any{
		card.ID,
		card.ChildID,
		nullableUUID(card.TopicID),
		card.Content.CardType,
		card.Content.Question,
		card.Content.Answer,
		nullableString(card.Content.Hint),
		choices,
		correct,
		nullableString(card.Content.TrueFalseAnswer),
		nullableString(card.Content.ClozeText),
		clozeAnswers,
		nullableString(card.Content.QuestionImageURL),
		nullableString(card.Content.AnswerImageURL),
		occlusion,
		card.Content.Difficulty,
		tags,
		card.IsActive,
		nullableString(card.ImportSource),
		card.DeletedAt,
		card.CreatedAt,
		card.UpdatedAt,
	}, nil
}

// cardJSONColumns marshals the card's list fields for JSONB storage.
// Empty lists are stored as SQL NULL.
func cardJSONColumns(
	content cardcontent.Fields,
) (choices, correct, clozeAnswers, occlusion, tags []byte, err error) {
	if choices, err = marshalJSONOrNil(content.Choices); err != nil {
		return
	}
	if correct, err = marshalJSONOrNil(content.CorrectChoices); err != nil {
		return
	}
	if clozeAnswers, err = marshalJSONOrNil(content.ClozeAnswers); err != nil {
		return
	}
	if occlusion, err = marshalJSONOrNil(content.OcclusionData); err != nil {
		return
	}
	tags, err = marshalJSONOrNil(content.Tags)
	return
}

func marshalJSONOrNil(v any) ([]byte, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
	case []int:
		if len(t) == 0 {
			return nil, nil
		}
	case []cardcontent.OcclusionRegion:
		if len(t) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal card field: %w", err)
	}
	return data, nil
}

func scanCard(row rowScanner) (*domain.Flashcard, error) {
	var (
		card            domain.Flashcard
		topicID         uuid.NullUUID
		hint            sql.NullString
		choices         []byte
		correct         []byte
		trueFalseAnswer sql.NullString
		clozeText       sql.NullString
		clozeAnswers    []byte
		questionImage   sql.NullString
		answerImage     sql.NullString
		occlusion       []byte
		tags            []byte
		importSource    sql.NullString
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&card.ID,
		&card.ChildID,
		&topicID,
		&card.Content.CardType,
		&card.Content.Question,
		&card.Content.Answer,
		&hint,
		&choices,
		&correct,
		&trueFalseAnswer,
		&clozeText,
		&clozeAnswers,
		&questionImage,
		&answerImage,
		&occlusion,
		&card.Content.Difficulty,
		&tags,
		&card.IsActive,
		&importSource,
		&deletedAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	if topicID.Valid {
		card.TopicID = topicID.UUID
	}
	card.Content.Hint = hint.String
	card.Content.TrueFalseAnswer = trueFalseAnswer.String
	card.Content.ClozeText = clozeText.String
	card.Content.QuestionImageURL = questionImage.String
	card.Content.AnswerImageURL = answerImage.String
	card.ImportSource = importSource.String
	if deletedAt.Valid {
		t := deletedAt.Time
		card.DeletedAt = &t
	}

	if err := unmarshalJSONIfPresent(choices, &card.Content.Choices); err != nil {
		return nil, err
	}
	if err := unmarshalJSONIfPresent(correct, &card.Content.CorrectChoices); err != nil {
		return nil, err
	}
	if err := unmarshalJSONIfPresent(clozeAnswers, &card.Content.ClozeAnswers); err != nil {
		return nil, err
	}
	if err := unmarshalJSONIfPresent(occlusion, &card.Content.OcclusionData); err != nil {
		return nil, err
	}
	if err := unmarshalJSONIfPresent(tags, &card.Content.Tags); err != nil {
		return nil, err
	}

	return &card, nil
}

func unmarshalJSONIfPresent(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal card field: %w", err)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	if id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}
