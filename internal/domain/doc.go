// Package domain defines the core business entities of the homeroom
// learning engine: parent accounts, children, flashcards, per-child review
// scheduling state, and weekly review slots.
package domain
