package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user. The user is validated before insertion.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListChildren retrieves the child profiles attached to a parent account.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.User, error)

	// Update persists the full current state of an existing user.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// when updating to an email already in use.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user permanently.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to the given transaction, so multiple
	// operations can share a single transaction managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
