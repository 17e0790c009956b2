package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// CharacterStore defines the interface for character persistence.
type CharacterStore interface {
	// Create saves a new character. The character is validated before insertion.
	Create(ctx context.Context, character *domain.Character) error

	// GetByID retrieves a character by its unique ID.
	// Returns ErrCharacterNotFound if the character does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Character, error)

	// ListByUser retrieves all characters owned by the given user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error)

	// Update persists the full current state of an existing character.
	// Returns ErrCharacterNotFound if the character does not exist.
	Update(ctx context.Context, character *domain.Character) error

	// Delete removes a character permanently.
	// Returns ErrCharacterNotFound if the character does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CharacterStore bound to the given transaction.
	WithTx(tx *sql.Tx) CharacterStore
}
