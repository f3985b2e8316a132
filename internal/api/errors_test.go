package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/service/auth"
	"github.com/homeroomhq/homeroom-api/internal/service/review"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{service.ErrNotOwned, http.StatusForbidden},
		{store.ErrCardNotFound, http.StatusNotFound},
		{store.ErrChildNotFound, http.StatusNotFound},
		{store.ErrReviewStateNotFound, http.StatusNotFound},
		{store.ErrEmailExists, http.StatusConflict},
		{store.ErrReviewStateExists, http.StatusConflict},
		{store.ErrInvalidEntity, http.StatusBadRequest},
		{review.ErrInvalidOutcome, http.StatusBadRequest},
		{review.ErrCardNotReviewable, http.StatusBadRequest},
		{service.ErrCardDeleted, http.StatusBadRequest},
		{service.ErrOutsideReviewSlot, http.StatusForbidden},
		{review.ErrNoCardsDue, http.StatusNoContent},
		{service.ErrGenerationUnavailable, http.StatusServiceUnavailable},
		{errors.New("something unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestMapErrorToStatusCodeUnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading card: %w", store.ErrCardNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(wrapped))

	svcErr := service.NewCardServiceError("create_card", "failed to save card", store.ErrInvalidEntity)
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(svcErr))
}

func TestGetSafeErrorMessageNeverEchoesInternals(t *testing.T) {
	t.Parallel()

	internal := errors.New("pq: connection refused on 10.0.0.5:5432")
	msg := GetSafeErrorMessage(internal)

	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.5")
}

func TestGetSafeErrorMessageKnownErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Card not found", GetSafeErrorMessage(store.ErrCardNotFound))
	assert.Equal(t, "No review slot is open right now",
		GetSafeErrorMessage(service.ErrOutsideReviewSlot))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
