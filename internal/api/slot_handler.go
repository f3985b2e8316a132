package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/homeroomhq/homeroom-api/internal/api/middleware"
	"github.com/homeroomhq/homeroom-api/internal/domain"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// SlotHandler handles weekly review slot API requests.
type SlotHandler struct {
	slotStore  store.ReviewSlotStore
	childStore store.ChildStore
	validator  *validator.Validate
}

// NewSlotHandler creates a new SlotHandler with the given dependencies.
func NewSlotHandler(slotStore store.ReviewSlotStore, childStore store.ChildStore) *SlotHandler {
	return &SlotHandler{
		slotStore:  slotStore,
		childStore: childStore,
		validator:  validator.New(),
	}
}

// Create handles POST /children/{childID}/slots.
func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	var req CreateSlotRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	startMinutes, endMinutes, ok := h.parseWindow(w, r, req.Start, req.End)
	if !ok {
		return
	}

	slot, err := domain.NewReviewSlot(
		childID, req.DayOfWeek, startMinutes, endMinutes, domain.SlotType(req.SlotType))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid slot: "+err.Error())
		return
	}

	if err := h.slotStore.Create(r.Context(), slot); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, slotResponse(slot))
}

// List handles GET /children/{childID}/slots.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	slots, err := h.slotStore.ListByChild(r.Context(), childID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, slotResponse(slot))
	}
	RespondWithJSON(w, r, http.StatusOK, responses)
}

// Update handles PUT /children/{childID}/slots/{slotID}.
func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	slot, ok := h.ownedSlot(w, r, childID)
	if !ok {
		return
	}

	var req UpdateSlotRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	startMinutes, endMinutes, ok := h.parseWindow(w, r, req.Start, req.End)
	if !ok {
		return
	}

	slot.DayOfWeek = req.DayOfWeek
	slot.StartMinutes = startMinutes
	slot.EndMinutes = endMinutes
	slot.SlotType = domain.SlotType(req.SlotType)
	slot.UpdatedAt = time.Now().UTC()

	if err := slot.Validate(); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid slot: "+err.Error())
		return
	}

	if err := h.slotStore.Update(r.Context(), slot); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, slotResponse(slot))
}

// Delete handles DELETE /children/{childID}/slots/{slotID}.
func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.authorizedChildID(w, r)
	if !ok {
		return
	}

	slot, ok := h.ownedSlot(w, r, childID)
	if !ok {
		return
	}

	if err := h.slotStore.Delete(r.Context(), slot.ID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SlotHandler) authorizedChildID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

// ownedSlot loads the slot named in the URL and verifies it belongs to the
// already-authorized child.
func (h *SlotHandler) ownedSlot(
	w http.ResponseWriter,
	r *http.Request,
	childID uuid.UUID,
) (*domain.ReviewSlot, bool) {
	slotID, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid slot ID")
		return nil, false
	}

	slot, err := h.slotStore.GetByID(r.Context(), slotID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return nil, false
	}

	if slot.ChildID != childID {
		RespondWithMappedError(w, r, store.ErrReviewSlotNotFound)
		return nil, false
	}

	return slot, true
}

func (h *SlotHandler) parseWindow(
	w http.ResponseWriter,
	r *http.Request,
	start, end string,
) (int, int, bool) {
	startMinutes, err := domain.ParseClock(start)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid start time, expected HH:MM")
		return 0, 0, false
	}
	endMinutes, err := domain.ParseClock(end)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid end time, expected HH:MM")
		return 0, 0, false
	}
	return startMinutes, endMinutes, true
}

func slotResponse(slot *domain.ReviewSlot) SlotResponse {
	return SlotResponse{
		ID:        slot.ID,
		ChildID:   slot.ChildID,
		DayOfWeek: slot.DayOfWeek,
		Start:     domain.FormatClock(slot.StartMinutes),
		End:       domain.FormatClock(slot.EndMinutes),
		SlotType:  string(slot.SlotType),
	}
}
