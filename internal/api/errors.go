package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/homeroomhq/homeroom-api/internal/api/shared"
	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/service/auth"
	"github.com/homeroomhq/homeroom-api/internal/service/review"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, review.ErrInvalidOutcome),
		errors.Is(err, review.ErrCardNotReviewable),
		errors.Is(err, service.ErrCardDeleted):
		return http.StatusBadRequest

	// Slot gating
	case errors.Is(err, service.ErrOutsideReviewSlot):
		return http.StatusForbidden

	// Special cases
	case errors.Is(err, review.ErrNoCardsDue):
		return http.StatusNoContent

	case errors.Is(err, service.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrChildNotFound):
		return "Child not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrReviewStateNotFound):
		return "Review state not found"

	case errors.Is(err, store.ErrReviewSlotNotFound):
		return "Review slot not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, review.ErrInvalidOutcome):
		return "Invalid review outcome"

	case errors.Is(err, review.ErrCardNotReviewable):
		return "Card is not reviewable"

	case errors.Is(err, service.ErrCardDeleted):
		return "Card is deleted"

	case errors.Is(err, service.ErrOutsideReviewSlot):
		return "No review slot is open right now"

	case errors.Is(err, service.ErrGenerationUnavailable):
		return "Draft generation is not available"

	default:
		return "An unexpected error occurred"
	}
}

// RespondWithMappedError writes an error response using the standard
// error-to-status and error-to-message mappings.
func RespondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

// SanitizeValidationError converts a validator error into a short message
// naming the offending fields without echoing submitted values back.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages,
			fmt.Sprintf("invalid %s (%s)", fe.Field(), validationTagMessage(fe.Tag())))
	}
	return strings.Join(messages, "; ")
}

// validationTagMessage maps validation tags to user-friendly error messages.
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "value too small or too short"
	case "max", "lte":
		return "value too large or too long"
	case "oneof":
		return "not an allowed value"
	default:
		return "invalid value"
	}
}
