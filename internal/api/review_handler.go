package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/homeroomhq/homeroom-api/internal/api/middleware"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/service/review"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// ReviewHandler handles review queue, session and grading API requests.
type ReviewHandler struct {
	reviewService review.Service
	childStore    store.ChildStore
	validator     *validator.Validate
	timeFunc      func() time.Time // Injectable for testing
}

// NewReviewHandler creates a new ReviewHandler with the given dependencies.
func NewReviewHandler(reviewService review.Service, childStore store.ChildStore) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		childStore:    childStore,
		validator:     validator.New(),
		timeFunc:      time.Now,
	}
}

// Queue handles GET /children/{childID}/review/queue.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	cards, err := h.reviewService.BuildQueue(r.Context(), childID, h.timeFunc().UTC(), 0)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if cards == nil {
		cards = []*domain.Flashcard{}
	}

	RespondWithJSON(w, r, http.StatusOK, cards)
}

// StartSession handles POST /children/{childID}/review/session.
func (h *ReviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	session, err := h.reviewService.StartSession(r.Context(), childID, h.timeFunc().UTC())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, session)
}

// SubmitOutcome handles POST /children/{childID}/review/cards/{cardID}/outcome.
// The response reports the scheduling transition: interval, ease and due time
// before and after the grade.
func (h *ReviewHandler) SubmitOutcome(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	var req SubmitOutcomeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	transition, err := h.reviewService.SubmitOutcome(
		r.Context(),
		childID,
		cardID,
		domain.ReviewOutcome(req.Outcome),
		h.timeFunc().UTC(),
	)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, transition)
}

// Postpone handles POST /children/{childID}/review/cards/{cardID}/postpone.
func (h *ReviewHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	var req PostponeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	state, err := h.reviewService.PostponeCard(
		r.Context(), childID, cardID, req.Days, h.timeFunc().UTC())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, state)
}

// authorizedChildID parses the child ID from the URL and verifies ownership,
// writing the error response itself on failure.
func (h *ReviewHandler) authorizedChildID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	childID, err := uuid.Parse(chi.URLParam(r, "childID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid child ID")
		return uuid.Nil, false
	}

	if err := AuthorizeChild(r.Context(), h.childStore, childID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return uuid.Nil, false
	}

	return childID, true
}
