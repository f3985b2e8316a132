// Package api implements the HTTP handlers for the homeroom API: account
// authentication, child profiles, flashcard authoring and lifecycle, review
// sessions and weekly review slots.
package api
