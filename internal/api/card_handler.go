package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/homeroomhq/homeroom-api/internal/api/middleware"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// CardHandler handles flashcard authoring and lifecycle API requests.
type CardHandler struct {
	cardService service.CardService
	childStore  store.ChildStore
	validator   *validator.Validate
}

// NewCardHandler creates a new CardHandler with the given dependencies.
func NewCardHandler(cardService service.CardService, childStore store.ChildStore) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		childStore:  childStore,
		validator:   validator.New(),
	}
}

// Create handles POST /cards. Validation failures come back as a 422 with
// the full field error set.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	if err := AuthorizeChild(r.Context(), h.childStore, req.ChildID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	card, fieldErrs, err := h.cardService.CreateCard(r.Context(), req.ChildID, req.TopicID, req.Content)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if !fieldErrs.Empty() {
		RespondWithJSON(w, r, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Card content failed validation",
			Fields: fieldErrs,
		})
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, card)
}

// Get handles GET /cards/{cardID}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, r, http.StatusOK, card)
}

// Update handles PUT /cards/{cardID}.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	updated, fieldErrs, err := h.cardService.UpdateCard(r.Context(), card.ID, req.Content)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if !fieldErrs.Empty() {
		RespondWithJSON(w, r, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Card content failed validation",
			Fields: fieldErrs,
		})
		return
	}

	RespondWithJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /cards/{cardID}: a soft delete that keeps review
// state intact.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	if err := h.cardService.SoftDeleteCard(r.Context(), card.ID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /cards/{cardID}/restore.
func (h *CardHandler) Restore(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	if err := h.cardService.RestoreCard(r.Context(), card.ID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	restored, err := h.cardService.GetCard(r.Context(), card.ID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, restored)
}

// ForceDelete handles DELETE /cards/{cardID}/force: permanent removal of the
// card and its review state.
func (h *CardHandler) ForceDelete(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	if err := h.cardService.ForceDeleteCard(r.Context(), card.ID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkStatus handles POST /cards/bulk-status. Every card in the batch must
// belong to a child of the authenticated account.
func (h *CardHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkStatusRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	for _, id := range req.IDs {
		if _, err := h.authorizeCardID(r.Context(), id, userID); err != nil {
			RespondWithMappedError(w, r, err)
			return
		}
	}

	updated, err := h.cardService.SetActiveBulk(r.Context(), req.IDs, *req.Active)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, BulkStatusResponse{Updated: updated})
}

// Import handles POST /cards/import.
func (h *CardHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ImportCardsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	if err := AuthorizeChild(r.Context(), h.childStore, req.ChildID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	result, err := h.cardService.ImportCards(
		r.Context(), req.ChildID, req.TopicID, req.Records, req.Source)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	// A batch where everything failed is still a handled request.
	status := http.StatusCreated
	if len(result.Created) == 0 {
		status = http.StatusUnprocessableEntity
	}
	RespondWithJSON(w, r, status, result)
}

// GenerateDrafts handles POST /cards/generate.
func (h *CardHandler) GenerateDrafts(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req GenerateDraftsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	drafts, err := h.cardService.GenerateDrafts(r.Context(), req.SourceText, req.Count)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, GenerateDraftsResponse{Drafts: drafts})
}

// ownedCard loads the card named in the URL and verifies the authenticated
// account owns it through the card's child.
func (h *CardHandler) ownedCard(w http.ResponseWriter, r *http.Request) (*domain.Flashcard, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return nil, false
	}

	card, err := h.authorizeCardID(r.Context(), cardID, userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return nil, false
	}

	return card, true
}

// authorizeCardID loads a card and verifies ownership via its child.
func (h *CardHandler) authorizeCardID(
	ctx context.Context,
	cardID, userID uuid.UUID,
) (*domain.Flashcard, error) {
	card, err := h.cardService.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeChild(ctx, h.childStore, card.ChildID, userID); err != nil {
		return nil, err
	}
	return card, nil
}
