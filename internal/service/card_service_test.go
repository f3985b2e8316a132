package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// fakeCardStore is an in-memory CardStore for service tests.
type fakeCardStore struct {
	cards     map[uuid.UUID]*domain.Flashcard
	createErr error
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[uuid.UUID]*domain.Flashcard)}
}

func (f *fakeCardStore) Create(_ context.Context, card *domain.Flashcard) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	for _, card := range cards {
		if err := f.Create(ctx, card); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (f *fakeCardStore) Update(_ context.Context, card *domain.Flashcard) error {
	if _, ok := f.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	card, ok := f.cards[id]
	if !ok || card.DeletedAt != nil {
		return store.ErrCardNotFound
	}
	now := time.Now().UTC()
	card.DeletedAt = &now
	return nil
}

func (f *fakeCardStore) Restore(_ context.Context, id uuid.UUID) error {
	card, ok := f.cards[id]
	if !ok || card.DeletedAt == nil {
		return store.ErrCardNotFound
	}
	card.DeletedAt = nil
	return nil
}

func (f *fakeCardStore) ForceDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeCardStore) SetActiveBulk(
	_ context.Context,
	ids []uuid.UUID,
	active bool,
) (int64, error) {
	var updated int64
	for _, id := range ids {
		if card, ok := f.cards[id]; ok {
			card.IsActive = active
			updated++
		}
	}
	return updated, nil
}

func (f *fakeCardStore) ListDueForChild(
	_ context.Context,
	childID uuid.UUID,
	_ time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	var due []*domain.Flashcard
	for _, card := range f.cards {
		if card.ChildID == childID && card.Reviewable() && len(due) < limit {
			due = append(due, card)
		}
	}
	return due, nil
}

func (f *fakeCardStore) WithTx(_ *sql.Tx) store.CardStore { return f }

// fakeGenerator returns canned drafts.
type fakeGenerator struct {
	drafts []cardcontent.RawFields
	err    error
}

func (f *fakeGenerator) GenerateDrafts(
	_ context.Context,
	_ string,
	_ int,
) ([]cardcontent.RawFields, error) {
	return f.drafts, f.err
}

func validBasicRaw() cardcontent.RawFields {
	return cardcontent.RawFields{
		CardType: "basic",
		Question: "What is the capital of France?",
		Answer:   "Paris",
	}
}

func newTestCardService(t *testing.T, cardStore store.CardStore) CardService {
	t.Helper()
	svc, err := NewCardService(nil, cardStore, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestCreateCard(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)
	childID := uuid.New()

	card, fieldErrs, err := svc.CreateCard(context.Background(), childID, uuid.Nil, validBasicRaw())
	require.NoError(t, err)
	require.Nil(t, fieldErrs)

	assert.Equal(t, childID, card.ChildID)
	assert.True(t, card.IsActive)
	assert.Contains(t, cardStore.cards, card.ID)
}

func TestCreateCardRejectsInvalidContent(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)

	card, fieldErrs, err := svc.CreateCard(
		context.Background(), uuid.New(), uuid.Nil,
		cardcontent.RawFields{CardType: "basic"})

	require.NoError(t, err)
	assert.Nil(t, card)
	assert.Contains(t, fieldErrs, "question")
	assert.Contains(t, fieldErrs, "answer")
	assert.Empty(t, cardStore.cards, "nothing should be persisted on validation failure")
}

func TestCreateCardPropagatesStoreError(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	cardStore.createErr = store.ErrInvalidEntity
	svc := newTestCardService(t, cardStore)

	_, _, err := svc.CreateCard(context.Background(), uuid.New(), uuid.Nil, validBasicRaw())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	var svcErr *CardServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_card", svcErr.Operation)
}

func TestUpdateCard(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)

	created, _, err := svc.CreateCard(context.Background(), uuid.New(), uuid.Nil, validBasicRaw())
	require.NoError(t, err)

	updatedRaw := validBasicRaw()
	updatedRaw.Answer = "Paris, France"

	updated, fieldErrs, err := svc.UpdateCard(context.Background(), created.ID, updatedRaw)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)
	assert.Equal(t, "Paris, France", updated.Content.Answer)
}

func TestUpdateCardNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestCardService(t, newFakeCardStore())

	_, _, err := svc.UpdateCard(context.Background(), uuid.New(), validBasicRaw())
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestUpdateCardRejectsSoftDeleted(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)

	created, _, err := svc.CreateCard(context.Background(), uuid.New(), uuid.Nil, validBasicRaw())
	require.NoError(t, err)
	require.NoError(t, svc.SoftDeleteCard(context.Background(), created.ID))

	_, _, err = svc.UpdateCard(context.Background(), created.ID, validBasicRaw())
	assert.ErrorIs(t, err, ErrCardDeleted)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)
	ctx := context.Background()

	created, _, err := svc.CreateCard(ctx, uuid.New(), uuid.Nil, validBasicRaw())
	require.NoError(t, err)

	require.NoError(t, svc.SoftDeleteCard(ctx, created.ID))

	// Soft-deleted cards stay retrievable.
	card, err := svc.GetCard(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, card.DeletedAt)

	// Deleting again reports not found.
	assert.ErrorIs(t, svc.SoftDeleteCard(ctx, created.ID), store.ErrCardNotFound)

	require.NoError(t, svc.RestoreCard(ctx, created.ID))
	card, err = svc.GetCard(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, card.DeletedAt)

	// Restoring a live card reports not found.
	assert.ErrorIs(t, svc.RestoreCard(ctx, created.ID), store.ErrCardNotFound)
}

func TestForceDeleteCard(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)
	ctx := context.Background()

	created, _, err := svc.CreateCard(ctx, uuid.New(), uuid.Nil, validBasicRaw())
	require.NoError(t, err)

	require.NoError(t, svc.ForceDeleteCard(ctx, created.ID))

	_, err = svc.GetCard(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestSetActiveBulkSkipsMissingIDs(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)
	ctx := context.Background()

	first, _, err := svc.CreateCard(ctx, uuid.New(), uuid.Nil, validBasicRaw())
	require.NoError(t, err)
	second, _, err := svc.CreateCard(ctx, uuid.New(), uuid.Nil, validBasicRaw())
	require.NoError(t, err)

	updated, err := svc.SetActiveBulk(ctx, []uuid.UUID{first.ID, second.ID, uuid.New()}, false)
	require.NoError(t, err)

	assert.Equal(t, int64(2), updated)
	assert.False(t, cardStore.cards[first.ID].IsActive)
	assert.False(t, cardStore.cards[second.ID].IsActive)
}

func TestImportCardsMixedBatch(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)
	childID := uuid.New()

	records := []cardcontent.RawFields{
		validBasicRaw(),
		{CardType: "basic"}, // missing question and answer
		{CardType: "cloze", ClozeText: "Water is {{H2O}}."},
		{CardType: "matching", Question: "q", Answer: "a"}, // unsupported type
	}

	result, err := svc.ImportCards(context.Background(), childID, uuid.Nil, records, "csv")
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	require.Len(t, result.Failed, 2)

	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Contains(t, result.Failed[0].Errors, "question")
	assert.Equal(t, 3, result.Failed[1].Index)
	assert.Contains(t, result.Failed[1].Errors, "card_type")

	for _, card := range result.Created {
		assert.Equal(t, "csv", card.ImportSource)
		assert.Equal(t, childID, card.ChildID)
	}
	assert.Len(t, cardStore.cards, 2)
}

func TestImportCardsAllInvalidPersistsNothing(t *testing.T) {
	t.Parallel()

	cardStore := newFakeCardStore()
	svc := newTestCardService(t, cardStore)

	result, err := svc.ImportCards(context.Background(), uuid.New(), uuid.Nil,
		[]cardcontent.RawFields{{CardType: "basic"}, {CardType: "basic"}}, "csv")
	require.NoError(t, err)

	assert.Empty(t, result.Created)
	assert.Len(t, result.Failed, 2)
	assert.Empty(t, cardStore.cards)
}

func TestGenerateDraftsWithoutGenerator(t *testing.T) {
	t.Parallel()

	svc := newTestCardService(t, newFakeCardStore())

	_, err := svc.GenerateDrafts(context.Background(), "some source text", 5)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateDrafts(t *testing.T) {
	t.Parallel()

	drafts := []cardcontent.RawFields{validBasicRaw()}
	svc, err := NewCardService(nil, newFakeCardStore(), &fakeGenerator{drafts: drafts}, nil)
	require.NoError(t, err)

	got, err := svc.GenerateDrafts(context.Background(), "some source text", 1)
	require.NoError(t, err)
	assert.Equal(t, drafts, got)
}

func TestGenerateDraftsWrapsGeneratorError(t *testing.T) {
	t.Parallel()

	genErr := errors.New("model unavailable")
	svc, err := NewCardService(nil, newFakeCardStore(), &fakeGenerator{err: genErr}, nil)
	require.NoError(t, err)

	_, err = svc.GenerateDrafts(context.Background(), "text", 1)
	assert.ErrorIs(t, err, genErr)
}

func TestNewCardServiceRequiresStore(t *testing.T) {
	t.Parallel()

	_, err := NewCardService(nil, nil, nil, nil)
	assert.Error(t, err)
}
