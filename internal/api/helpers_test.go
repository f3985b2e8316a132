package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/homeroomhq/homeroom-api/internal/api/shared"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/domain/srs"
	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/service/review"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// In-memory store fakes backing the handler tests. The real services run on
// top of them, so tests exercise the full handler-to-service path.

type memUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUserStore) WithTx(_ *sql.Tx) store.UserStore { return m }

type memChildStore struct {
	children map[uuid.UUID]*domain.Child
}

func newMemChildStore() *memChildStore {
	return &memChildStore{children: make(map[uuid.UUID]*domain.Child)}
}

func (m *memChildStore) Create(_ context.Context, child *domain.Child) error {
	m.children[child.ID] = child
	return nil
}

func (m *memChildStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Child, error) {
	child, ok := m.children[id]
	if !ok {
		return nil, store.ErrChildNotFound
	}
	return child, nil
}

func (m *memChildStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.Child, error) {
	var out []*domain.Child
	for _, child := range m.children {
		if child.UserID == userID {
			out = append(out, child)
		}
	}
	return out, nil
}

func (m *memChildStore) Update(_ context.Context, child *domain.Child) error {
	if _, ok := m.children[child.ID]; !ok {
		return store.ErrChildNotFound
	}
	m.children[child.ID] = child
	return nil
}

func (m *memChildStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.children[id]; !ok {
		return store.ErrChildNotFound
	}
	delete(m.children, id)
	return nil
}

func (m *memChildStore) WithTx(_ *sql.Tx) store.ChildStore { return m }

type memCardStore struct {
	cards map[uuid.UUID]*domain.Flashcard
}

func newMemCardStore() *memCardStore {
	return &memCardStore{cards: make(map[uuid.UUID]*domain.Flashcard)}
}

func (m *memCardStore) Create(_ context.Context, card *domain.Flashcard) error {
	m.cards[card.ID] = card
	return nil
}

func (m *memCardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	for _, card := range cards {
		if err := m.Create(ctx, card); err != nil {
			return err
		}
	}
	return nil
}

func (m *memCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	card, ok := m.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (m *memCardStore) Update(_ context.Context, card *domain.Flashcard) error {
	if _, ok := m.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	m.cards[card.ID] = card
	return nil
}

func (m *memCardStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	card, ok := m.cards[id]
	if !ok || card.DeletedAt != nil {
		return store.ErrCardNotFound
	}
	now := time.Now().UTC()
	card.DeletedAt = &now
	return nil
}

func (m *memCardStore) Restore(_ context.Context, id uuid.UUID) error {
	card, ok := m.cards[id]
	if !ok || card.DeletedAt == nil {
		return store.ErrCardNotFound
	}
	card.DeletedAt = nil
	return nil
}

func (m *memCardStore) ForceDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(m.cards, id)
	return nil
}

func (m *memCardStore) SetActiveBulk(
	_ context.Context,
	ids []uuid.UUID,
	active bool,
) (int64, error) {
	var updated int64
	for _, id := range ids {
		if card, ok := m.cards[id]; ok {
			card.IsActive = active
			updated++
		}
	}
	return updated, nil
}

func (m *memCardStore) ListDueForChild(
	_ context.Context,
	childID uuid.UUID,
	_ time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	var due []*domain.Flashcard
	for _, card := range m.cards {
		if card.ChildID == childID && card.Reviewable() && len(due) < limit {
			due = append(due, card)
		}
	}
	return due, nil
}

func (m *memCardStore) WithTx(_ *sql.Tx) store.CardStore { return m }

type memStateStore struct {
	states map[string]*domain.ReviewState
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]*domain.ReviewState)}
}

func memStateKey(childID, cardID uuid.UUID) string {
	return childID.String() + "/" + cardID.String()
}

func (m *memStateStore) Create(_ context.Context, state *domain.ReviewState) error {
	key := memStateKey(state.ChildID, state.CardID)
	if _, ok := m.states[key]; ok {
		return store.ErrReviewStateExists
	}
	m.states[key] = state
	return nil
}

func (m *memStateStore) Get(
	_ context.Context,
	childID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	state, ok := m.states[memStateKey(childID, cardID)]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	return state, nil
}

func (m *memStateStore) GetForUpdate(
	ctx context.Context,
	childID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	return m.Get(ctx, childID, cardID)
}

func (m *memStateStore) Update(_ context.Context, state *domain.ReviewState) error {
	key := memStateKey(state.ChildID, state.CardID)
	if _, ok := m.states[key]; !ok {
		return store.ErrReviewStateNotFound
	}
	m.states[key] = state
	return nil
}

func (m *memStateStore) Delete(_ context.Context, childID, cardID uuid.UUID) error {
	delete(m.states, memStateKey(childID, cardID))
	return nil
}

func (m *memStateStore) WithTx(_ *sql.Tx) store.ReviewStateStore { return m }

type memSlotStore struct {
	slots map[uuid.UUID]*domain.ReviewSlot
}

func newMemSlotStore() *memSlotStore {
	return &memSlotStore{slots: make(map[uuid.UUID]*domain.ReviewSlot)}
}

func (m *memSlotStore) Create(_ context.Context, slot *domain.ReviewSlot) error {
	m.slots[slot.ID] = slot
	return nil
}

func (m *memSlotStore) GetByID(_ context.Context, id uuid.UUID) (*domain.ReviewSlot, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, store.ErrReviewSlotNotFound
	}
	return slot, nil
}

func (m *memSlotStore) ListByChild(
	_ context.Context,
	childID uuid.UUID,
) ([]*domain.ReviewSlot, error) {
	var out []*domain.ReviewSlot
	for _, slot := range m.slots {
		if slot.ChildID == childID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (m *memSlotStore) Update(_ context.Context, slot *domain.ReviewSlot) error {
	if _, ok := m.slots[slot.ID]; !ok {
		return store.ErrReviewSlotNotFound
	}
	m.slots[slot.ID] = slot
	return nil
}

func (m *memSlotStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.slots[id]; !ok {
		return store.ErrReviewSlotNotFound
	}
	delete(m.slots, id)
	return nil
}

func (m *memSlotStore) WithTx(_ *sql.Tx) store.ReviewSlotStore { return m }

// apiTestEnv wires the real services over the in-memory stores and mounts
// every handler on the production route layout.
type apiTestEnv struct {
	router chi.Router

	userStore  *memUserStore
	childStore *memChildStore
	cardStore  *memCardStore
	stateStore *memStateStore
	slotStore  *memSlotStore

	cardService   service.CardService
	reviewService review.Service
	reviewHandler *ReviewHandler
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	env := &apiTestEnv{
		userStore:  newMemUserStore(),
		childStore: newMemChildStore(),
		cardStore:  newMemCardStore(),
		stateStore: newMemStateStore(),
		slotStore:  newMemSlotStore(),
	}

	cardService, err := service.NewCardService(nil, env.cardStore, nil, nil)
	require.NoError(t, err)
	env.cardService = cardService

	env.reviewService = review.NewService(
		nil, env.cardStore, env.stateStore, env.slotStore,
		srs.NewDefaultService(), review.Config{}, nil)

	childHandler := NewChildHandler(env.childStore)
	cardHandler := NewCardHandler(env.cardService, env.childStore)
	reviewHandler := NewReviewHandler(env.reviewService, env.childStore)
	slotHandler := NewSlotHandler(env.slotStore, env.childStore)
	env.reviewHandler = reviewHandler

	r := chi.NewRouter()
	r.Route("/children", func(r chi.Router) {
		r.Post("/", childHandler.Create)
		r.Get("/", childHandler.List)
		r.Get("/{childID}", childHandler.Get)
		r.Put("/{childID}", childHandler.Update)
		r.Delete("/{childID}", childHandler.Delete)

		r.Route("/{childID}/review", func(r chi.Router) {
			r.Get("/queue", reviewHandler.Queue)
			r.Post("/session", reviewHandler.StartSession)
			r.Post("/cards/{cardID}/outcome", reviewHandler.SubmitOutcome)
			r.Post("/cards/{cardID}/postpone", reviewHandler.Postpone)
		})

		r.Route("/{childID}/slots", func(r chi.Router) {
			r.Post("/", slotHandler.Create)
			r.Get("/", slotHandler.List)
			r.Put("/{slotID}", slotHandler.Update)
			r.Delete("/{slotID}", slotHandler.Delete)
		})
	})
	r.Route("/cards", func(r chi.Router) {
		r.Post("/", cardHandler.Create)
		r.Post("/import", cardHandler.Import)
		r.Post("/generate", cardHandler.GenerateDrafts)
		r.Post("/bulk-status", cardHandler.BulkStatus)
		r.Get("/{cardID}", cardHandler.Get)
		r.Put("/{cardID}", cardHandler.Update)
		r.Delete("/{cardID}", cardHandler.Delete)
		r.Post("/{cardID}/restore", cardHandler.Restore)
		r.Delete("/{cardID}/force", cardHandler.ForceDelete)
	})
	env.router = r

	return env
}

// addChild seeds a child profile owned by the given account.
func (env *apiTestEnv) addChild(t *testing.T, userID uuid.UUID) *domain.Child {
	t.Helper()
	child, err := domain.NewChild(userID, "Test Child", 2016)
	require.NoError(t, err)
	require.NoError(t, env.childStore.Create(context.Background(), child))
	return child
}

// do issues a request against the router as the given authenticated user.
// A nil userID issues the request unauthenticated.
func (env *apiTestEnv) do(
	t *testing.T,
	method, target string,
	body any,
	userID *uuid.UUID,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, *userID)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func ptr[T any](v T) *T { return &v }
