package api

import (
	"github.com/google/uuid"
	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
)

// Common request/response structures

// RegisterRequest defines the payload for the account registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the account login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated account
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`
}

// CreateChildRequest defines the payload for creating a child profile.
type CreateChildRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	BirthYear int    `json:"birth_year,omitempty" validate:"omitempty,gte=1990,lte=2100"`
}

// UpdateChildRequest defines the payload for updating a child profile.
type UpdateChildRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	BirthYear int    `json:"birth_year,omitempty" validate:"omitempty,gte=1990,lte=2100"`
}

// CreateCardRequest defines the payload for authoring a single card.
type CreateCardRequest struct {
	ChildID uuid.UUID             `json:"child_id" validate:"required"`
	TopicID uuid.UUID             `json:"topic_id,omitempty"`
	Content cardcontent.RawFields `json:"content"`
}

// UpdateCardRequest defines the payload for replacing a card's content.
type UpdateCardRequest struct {
	Content cardcontent.RawFields `json:"content"`
}

// ImportCardsRequest defines the payload for the bulk import endpoint.
type ImportCardsRequest struct {
	ChildID uuid.UUID               `json:"child_id" validate:"required"`
	TopicID uuid.UUID               `json:"topic_id,omitempty"`
	Source  string                  `json:"source,omitempty"`
	Records []cardcontent.RawFields `json:"records" validate:"required,min=1,max=500"`
}

// BulkStatusRequest defines the payload for flipping active status on a set
// of cards.
type BulkStatusRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
	Active *bool       `json:"active" validate:"required"`
}

// BulkStatusResponse reports how many cards a bulk status change touched.
type BulkStatusResponse struct {
	Updated int64 `json:"updated"`
}

// GenerateDraftsRequest defines the payload for the draft generation endpoint.
type GenerateDraftsRequest struct {
	SourceText string `json:"source_text" validate:"required,min=1,max=20000"`
	Count      int    `json:"count,omitempty" validate:"omitempty,gte=1,lte=20"`
}

// GenerateDraftsResponse carries unpersisted draft cards back to the caller.
type GenerateDraftsResponse struct {
	Drafts []cardcontent.RawFields `json:"drafts"`
}

// ValidationErrorResponse reports the accumulated field errors that rejected
// a card submission.
type ValidationErrorResponse struct {
	Error  string                  `json:"error"`
	Fields cardcontent.FieldErrors `json:"fields"`
}

// SubmitOutcomeRequest defines the payload for grading a card.
type SubmitOutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=again hard good easy"`
}

// PostponeRequest defines the payload for postponing a card's next review.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=365"`
}

// CreateSlotRequest defines the payload for creating a weekly review slot.
// Start and End are "HH:MM" clock strings.
type CreateSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"required,gte=1,lte=7"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	SlotType  string `json:"slot_type" validate:"required,oneof=micro standard"`
}

// UpdateSlotRequest defines the payload for updating a weekly review slot.
type UpdateSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"required,gte=1,lte=7"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	SlotType  string `json:"slot_type" validate:"required,oneof=micro standard"`
}

// SlotResponse renders a review slot with formatted clock strings.
type SlotResponse struct {
	ID        uuid.UUID `json:"id"`
	ChildID   uuid.UUID `json:"child_id"`
	DayOfWeek int       `json:"day_of_week"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	SlotType  string    `json:"slot_type"`
}
