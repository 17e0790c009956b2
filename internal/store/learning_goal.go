package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// LearningGoalStore defines the interface for learning goal persistence.
type LearningGoalStore interface {
	// Create saves a new learning goal. The goal is validated before insertion.
	Create(ctx context.Context, goal *domain.LearningGoal) error

	// GetByID retrieves a learning goal by its unique ID.
	// Returns ErrGoalNotFound if the goal does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningGoal, error)

	// ListByChild retrieves all learning goals assigned to the given child.
	ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.LearningGoal, error)

	// Update persists the full current state of an existing learning goal.
	// Returns ErrGoalNotFound if the goal does not exist.
	Update(ctx context.Context, goal *domain.LearningGoal) error

	// Delete removes a learning goal permanently.
	// Returns ErrGoalNotFound if the goal does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a LearningGoalStore bound to the given transaction.
	WithTx(tx *sql.Tx) LearningGoalStore
}
