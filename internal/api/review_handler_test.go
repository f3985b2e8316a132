package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/service/review"
)

func TestReviewQueue(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	seedCard(t, env, child.ID)
	seedCard(t, env, child.ID)

	rec := env.do(t, http.MethodGet,
		"/children/"+child.ID.String()+"/review/queue", nil, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	cards := decodeBody[[]domain.Flashcard](t, rec)
	assert.Len(t, cards, 2)
}

func TestReviewQueueEmptyIsArray(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)

	rec := env.do(t, http.MethodGet,
		"/children/"+child.ID.String()+"/review/queue", nil, &userID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestReviewQueueForeignChildForbidden(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	child := env.addChild(t, uuid.New())
	otherUser := uuid.New()

	rec := env.do(t, http.MethodGet,
		"/children/"+child.ID.String()+"/review/queue", nil, &otherUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewStartSession(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	seedCard(t, env, child.ID)

	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/session", nil, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeBody[review.Session](t, rec)
	assert.Equal(t, child.ID, session.ChildID)
	assert.Len(t, session.Cards, 1)
	assert.Equal(t, review.DefaultStandardSessionCards, session.Capacity)
}

func TestReviewStartSessionNoCardsDue(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)

	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/session", nil, &userID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReviewStartSessionOutsideSlot(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	seedCard(t, env, child.ID)

	// Wednesday 16:00-17:00 slot; the clock says Wednesday 09:00.
	slot, err := domain.NewReviewSlot(child.ID, 3, 16*60, 17*60, domain.SlotTypeStandard)
	require.NoError(t, err)
	env.slotStore.slots[slot.ID] = slot

	env.reviewHandler.timeFunc = func() time.Time {
		return time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)
	}

	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/session", nil, &userID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewSubmitOutcome(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	card := seedCard(t, env, child.ID)

	target := "/children/" + child.ID.String() + "/review/cards/" + card.ID.String() + "/outcome"

	rec := env.do(t, http.MethodPost, target, SubmitOutcomeRequest{Outcome: "good"}, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	transition := decodeBody[review.Transition](t, rec)
	assert.True(t, transition.FirstReview)
	assert.Equal(t, domain.ReviewOutcomeGood, transition.Outcome)
	assert.Equal(t, float64(2), transition.After.IntervalDays)

	// Second grade on the same card updates rather than creates.
	rec = env.do(t, http.MethodPost, target, SubmitOutcomeRequest{Outcome: "again"}, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	transition = decodeBody[review.Transition](t, rec)
	assert.False(t, transition.FirstReview)
	assert.Equal(t, 0, transition.After.RepetitionCount)
}

func TestReviewSubmitOutcomeRejectsUnknownValue(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	card := seedCard(t, env, child.ID)

	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/cards/"+card.ID.String()+"/outcome",
		SubmitOutcomeRequest{Outcome: "perfect"}, &userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewPostpone(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	card := seedCard(t, env, child.ID)

	// Grade once so scheduling state exists.
	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/cards/"+card.ID.String()+"/outcome",
		SubmitOutcomeRequest{Outcome: "good"}, &userID)
	require.Equal(t, http.StatusOK, rec.Code)
	graded := decodeBody[review.Transition](t, rec)

	rec = env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/cards/"+card.ID.String()+"/postpone",
		PostponeRequest{Days: 2}, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decodeBody[domain.ReviewState](t, rec)
	assert.Equal(t, graded.After.DueAt.AddDate(0, 0, 2), state.DueAt)
	assert.Equal(t, graded.After.IntervalDays, state.IntervalDays)
}

func TestReviewPostponeWithoutState(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	card := seedCard(t, env, child.ID)

	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/cards/"+card.ID.String()+"/postpone",
		PostponeRequest{Days: 2}, &userID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewPostponeValidatesDays(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	card := seedCard(t, env, child.ID)

	rec := env.do(t, http.MethodPost,
		"/children/"+child.ID.String()+"/review/cards/"+card.ID.String()+"/postpone",
		PostponeRequest{Days: 0}, &userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
