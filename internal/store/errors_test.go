package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrCardNotFound))
	assert.True(t, IsNotFoundError(ErrReviewSlotNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("loading: %w", ErrChildNotFound)))

	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("some other error")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.True(t, IsDuplicateError(ErrReviewStateExists))

	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreErrorFormatting(t *testing.T) {
	t.Parallel()

	withCause := NewStoreError("flashcard", "create", "insert failed", ErrInvalidEntity)
	assert.Equal(t,
		"create operation on flashcard failed: insert failed: invalid entity",
		withCause.Error())

	withoutCause := NewStoreError("review state", "update", "no rows affected", nil)
	assert.Equal(t,
		"update operation on review state failed: no rows affected",
		withoutCause.Error())
}

func TestStoreErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewStoreError("flashcard", "get", "lookup failed", ErrCardNotFound)

	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	var storeErr *StoreError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &storeErr)
	assert.Equal(t, "flashcard", storeErr.Entity)
	assert.Equal(t, "get", storeErr.Operation)
}
