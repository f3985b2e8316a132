// Package service provides application-level services for managing
// flashcards, review scheduling and accounts. Services orchestrate the
// domain model and the store layer; HTTP concerns stay in the api package.
package service
