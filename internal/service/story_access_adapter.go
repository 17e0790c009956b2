package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// StoryAccessAdapter exposes the narrow persistence surface background
// generation tasks need, backed by the same stores and event emitter the
// services use.
type StoryAccessAdapter struct {
	db         *sql.DB
	stories    store.StoryStore
	characters store.CharacterStore
	goals      store.LearningGoalStore
	users      store.UserStore
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewStoryAccessAdapter creates a StoryAccessAdapter.
func NewStoryAccessAdapter(
	db *sql.DB,
	stories store.StoryStore,
	characters store.CharacterStore,
	goals store.LearningGoalStore,
	users store.UserStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*StoryAccessAdapter, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if stories == nil || characters == nil || goals == nil || users == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StoryAccessAdapter{
		db:         db,
		stories:    stories,
		characters: characters,
		goals:      goals,
		users:      users,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "story_access")),
	}, nil
}

// GetStory retrieves a story by ID.
func (a *StoryAccessAdapter) GetStory(ctx context.Context, storyID uuid.UUID) (*domain.Story, error) {
	return a.stories.GetByID(ctx, storyID)
}

// SaveStory persists the story's current state in a transaction and publishes
// its recorded domain events after commit.
func (a *StoryAccessAdapter) SaveStory(ctx context.Context, story *domain.Story) error {
	err := store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		return a.stories.WithTx(tx).Update(ctx, story)
	})
	if err != nil {
		return err
	}
	publishEvents(ctx, a.emitter, a.logger, story)
	return nil
}

// GetCharacter retrieves the story's protagonist.
func (a *StoryAccessAdapter) GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error) {
	return a.characters.GetByID(ctx, characterID)
}

// GetLearningGoals resolves the goal IDs attached to a story. Goals deleted
// since the story was drafted are skipped rather than failing generation.
func (a *StoryAccessAdapter) GetLearningGoals(ctx context.Context, ids []uuid.UUID) ([]*domain.LearningGoal, error) {
	goals := make([]*domain.LearningGoal, 0, len(ids))
	for _, id := range ids {
		goal, err := a.goals.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				a.logger.Warn("skipping missing learning goal", "goal_id", id)
				continue
			}
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

// OwnerAge returns the story owner's age in years, or zero when the owner has
// no recorded date of birth.
func (a *StoryAccessAdapter) OwnerAge(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Age(), nil
}
