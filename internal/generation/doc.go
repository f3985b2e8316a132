// Package generation provides the boundary interface for draft flashcard
// generation backed by an external LLM service. It abstracts the details of
// the Gemini API integration, allowing the application to produce draft cards
// from source text without coupling to a specific provider.
package generation
