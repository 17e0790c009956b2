package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: "some_constraint"}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "no rows", err: sql.ErrNoRows, target: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), target: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503"), target: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514"), target: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), target: store.ErrInvalidEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.target)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		err := errors.New("connection refused")
		assert.Equal(t, err, MapError(err))
	})

	t.Run("wrapped pg errors still match", func(t *testing.T) {
		err := fmt.Errorf("inserting story: %w", newPgError("23505"))
		assert.ErrorIs(t, MapError(err), store.ErrDuplicate)
	})
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(newPgError("23505")))
	assert.False(t, IsUniqueViolation(newPgError("23503")))
	assert.False(t, IsUniqueViolation(errors.New("plain")))

	assert.True(t, IsForeignKeyViolation(newPgError("23503")))
	assert.False(t, IsForeignKeyViolation(newPgError("23505")))
}
