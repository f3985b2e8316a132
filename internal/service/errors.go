package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource belongs to a different account than
	// the one making the request. Maps to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another account")

	// ErrCardDeleted indicates an operation that requires a live card was
	// attempted on a soft-deleted one.
	ErrCardDeleted = errors.New("card is deleted")

	// ErrOutsideReviewSlot indicates a review session was requested outside
	// every configured slot window for the child.
	ErrOutsideReviewSlot = errors.New("no review slot is open at this time")

	// ErrGenerationUnavailable indicates draft generation is not configured.
	ErrGenerationUnavailable = errors.New("draft generation is not available")
)
