package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/internal/store"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MapError(nil))

	err := MapError(sql.ErrNoRows)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = MapError(pgError(uniqueViolationCode, "users_email_key"))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = MapError(pgError(foreignKeyViolationCode, "tasks_project_id_fkey"))
	assert.ErrorIs(t, err, store.ErrForeignKeyViolation)
	assert.Contains(t, err.Error(), "tasks_project_id_fkey")

	err = MapError(pgError(checkViolationCode, "tasks_status_check"))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	// Unknown errors pass through unchanged.
	plain := errors.New("network down")
	assert.Same(t, plain, MapError(plain))
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	constraints := map[string]error{
		"users_email_key":    store.ErrEmailExists,
		"users_username_key": store.ErrUsernameExists,
	}

	err := MapUniqueViolation(pgError(uniqueViolationCode, "users_email_key"), constraints)
	assert.ErrorIs(t, err, store.ErrEmailExists)

	err = MapUniqueViolation(pgError(uniqueViolationCode, "users_username_key"), constraints)
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	// Unknown constraint falls back to the generic duplicate error.
	err = MapUniqueViolation(pgError(uniqueViolationCode, "something_else"), constraints)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, store.ErrEmailExists)

	// Non-unique-violation errors pass through.
	fkErr := pgError(foreignKeyViolationCode, "fk")
	assert.Same(t, error(fkErr), MapUniqueViolation(fkErr, constraints))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("insert: %w", pgError(uniqueViolationCode, "x"))
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsForeignKeyViolation(wrapped))

	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode, "x")))
	assert.False(t, IsUniqueViolation(errors.New("plain")))

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrTaskNotFound))
	assert.False(t, IsNotFoundError(errors.New("plain")))
}
