package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/homeroomhq/homeroom-api/internal/api/middleware"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// ChildHandler handles child profile API requests.
type ChildHandler struct {
	childStore store.ChildStore
	validator  *validator.Validate
}

// NewChildHandler creates a new ChildHandler with the given dependencies.
func NewChildHandler(childStore store.ChildStore) *ChildHandler {
	return &ChildHandler{
		childStore: childStore,
		validator:  validator.New(),
	}
}

// Create handles POST /children.
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateChildRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	child, err := domain.NewChild(userID, req.Name, req.BirthYear)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid child data")
		return
	}

	if err := h.childStore.Create(r.Context(), child); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, child)
}

// List handles GET /children.
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	children, err := h.childStore.ListByUser(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if children == nil {
		children = []*domain.Child{}
	}

	RespondWithJSON(w, r, http.StatusOK, children)
}

// Get handles GET /children/{childID}.
func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, ok := h.ownedChild(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, r, http.StatusOK, child)
}

// Update handles PUT /children/{childID}.
func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	child, ok := h.ownedChild(w, r)
	if !ok {
		return
	}

	var req UpdateChildRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	child.Name = strings.TrimSpace(req.Name)
	child.BirthYear = req.BirthYear
	child.UpdatedAt = time.Now().UTC()

	if err := h.childStore.Update(r.Context(), child); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, child)
}

// Delete handles DELETE /children/{childID}. Cards, review state and slots go
// with the profile via database-level cascade.
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	child, ok := h.ownedChild(w, r)
	if !ok {
		return
	}

	if err := h.childStore.Delete(r.Context(), child.ID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedChild loads the child named in the URL and verifies the authenticated
// account owns it, writing the error response itself when it does not.
func (h *ChildHandler) ownedChild(w http.ResponseWriter, r *http.Request) (*domain.Child, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}

	childID, err := uuid.Parse(chi.URLParam(r, "childID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid child ID")
		return nil, false
	}

	child, err := h.childStore.GetByID(r.Context(), childID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return nil, false
	}

	if child.UserID != userID {
		RespondWithMappedError(w, r, service.ErrNotOwned)
		return nil, false
	}

	return child, true
}

// AuthorizeChild verifies the child exists and belongs to the user. Other
// handlers that operate on child-scoped resources share this check.
func AuthorizeChild(
	ctx context.Context,
	childStore store.ChildStore,
	childID, userID uuid.UUID,
) error {
	child, err := childStore.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, store.ErrChildNotFound) {
			return store.ErrChildNotFound
		}
		return err
	}
	if child.UserID != userID {
		return service.ErrNotOwned
	}
	return nil
}
