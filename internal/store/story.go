package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// StoryStore defines the interface for story persistence.
type StoryStore interface {
	// Create saves a new story. The story is validated before insertion.
	Create(ctx context.Context, story *domain.Story) error

	// GetByID retrieves a story by its unique ID.
	// Returns ErrStoryNotFound if the story does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error)

	// ListByUser retrieves all stories owned by the given user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error)

	// ListPublished retrieves published, approved stories newest first,
	// with offset/limit paging.
	ListPublished(ctx context.Context, offset, limit int) ([]*domain.Story, error)

	// Update persists the full current state of an existing story.
	// Returns ErrStoryNotFound if the story does not exist.
	Update(ctx context.Context, story *domain.Story) error

	// Delete removes a story permanently.
	// Returns ErrStoryNotFound if the story does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a StoryStore bound to the given transaction.
	WithTx(tx *sql.Tx) StoryStore
}
