package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/internal/store"
)

func TestErrorDefinitions(t *testing.T) {
	t.Parallel()

	// Entity-specific errors must match their generic parents via errors.Is.
	assert.ErrorIs(t, store.ErrUserNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrProjectNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrTaskNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrCategoryNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrCommentNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrAttachmentNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrMemberNotFound, store.ErrNotFound)

	assert.ErrorIs(t, store.ErrEmailExists, store.ErrDuplicate)
	assert.ErrorIs(t, store.ErrUsernameExists, store.ErrDuplicate)
	assert.ErrorIs(t, store.ErrMemberExists, store.ErrDuplicate)
	assert.ErrorIs(t, store.ErrCategoryExists, store.ErrDuplicate)

	// Not-found and duplicate families must not overlap.
	assert.NotErrorIs(t, store.ErrEmailExists, store.ErrNotFound)
	assert.NotErrorIs(t, store.ErrTaskNotFound, store.ErrDuplicate)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("getting task: %w", store.ErrTaskNotFound)
	assert.True(t, store.IsNotFoundError(wrapped))
	assert.False(t, store.IsDuplicateError(wrapped))

	dup := fmt.Errorf("creating user: %w", store.ErrEmailExists)
	assert.True(t, store.IsDuplicateError(dup))
	assert.False(t, store.IsNotFoundError(dup))

	assert.False(t, store.IsNotFoundError(errors.New("unrelated")))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := store.NewStoreError("task", "create", "insert failed", inner)

	assert.Contains(t, err.Error(), "create operation on task failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)

	bare := store.NewStoreError("user", "delete", "no rows affected", nil)
	assert.Equal(t, "delete operation on user failed: no rows affected", bare.Error())
}
