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

// GenerationScheduler enqueues background story generation. The task
// package provides the production implementation.
type GenerationScheduler interface {
	Schedule(ctx context.Context, storyID uuid.UUID) error
}

// CreateStoryInput carries the user-provided fields for a new story.
type CreateStoryInput struct {
	Title           string
	Prompt          string
	Genre           string
	CharacterID     uuid.UUID
	LearningGoalIDs []uuid.UUID
}

// StoryService orchestrates the story lifecycle: drafting against the
// owner's quota, scheduling generation, moderation, publication and
// engagement tracking.
type StoryService struct {
	db         *sql.DB
	stories    store.StoryStore
	users      store.UserStore
	characters store.CharacterStore
	scheduler  GenerationScheduler
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewStoryService creates a StoryService. The scheduler may be nil in
// configurations without background generation (e.g. tests); every other
// dependency is required.
func NewStoryService(
	db *sql.DB,
	stories store.StoryStore,
	users store.UserStore,
	characters store.CharacterStore,
	scheduler GenerationScheduler,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*StoryService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if stories == nil || users == nil || characters == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StoryService{
		db:         db,
		stories:    stories,
		users:      users,
		characters: characters,
		scheduler:  scheduler,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "story_service")),
	}, nil
}

// CreateStory drafts a story for the user, consumes one story from the
// monthly quota, and schedules background generation.
func (s *StoryService) CreateStory(ctx context.Context, userID uuid.UUID, input CreateStoryInput) (*domain.Story, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapError("create_story", "failed to load account", err)
	}
	if !user.CanGenerateMoreStories() {
		return nil, domain.ErrStoryQuotaExhausted
	}

	character, err := s.characters.GetByID(ctx, input.CharacterID)
	if err != nil {
		return nil, wrapError("create_story", "failed to load character", err)
	}
	if character.UserID != userID {
		return nil, ErrNotOwned
	}

	story, err := domain.NewStory(input.Title, input.Prompt, input.CharacterID, userID)
	if err != nil {
		return nil, err
	}
	story.Genre = input.Genre
	for _, goalID := range input.LearningGoalIDs {
		if err := story.AddLearningGoal(goalID); err != nil {
			return nil, err
		}
	}

	if err := user.RecordStoryGenerated(); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stories.WithTx(tx).Create(ctx, story); err != nil {
			return err
		}
		return s.users.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, wrapError("create_story", "failed to save story", err)
	}

	s.publishStoryEvents(ctx, story)
	s.publishUserEvents(ctx, user)

	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, story.ID); err != nil {
			// The draft is saved; generation can be retried later.
			s.logger.Error("failed to schedule story generation",
				"error", err,
				"story_id", story.ID)
		}
	}

	s.logger.Info("story created", "story_id", story.ID, "user_id", userID)
	return story, nil
}

// GetStory retrieves a story the requester may see: their own, or any
// published one.
func (s *StoryService) GetStory(ctx context.Context, requesterID, storyID uuid.UUID) (*domain.Story, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, wrapError("get_story", "failed to load story", err)
	}
	if story.UserID != requesterID && !story.IsPublic {
		return nil, ErrNotOwned
	}
	return story, nil
}

// ListUserStories returns all stories owned by the user, newest first.
func (s *StoryService) ListUserStories(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error) {
	stories, err := s.stories.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapError("list_user_stories", "failed to load stories", err)
	}
	return stories, nil
}

// ListPublished returns a page of publicly published stories.
func (s *StoryService) ListPublished(ctx context.Context, offset, limit int) ([]*domain.Story, error) {
	stories, err := s.stories.ListPublished(ctx, offset, limit)
	if err != nil {
		return nil, wrapError("list_published", "failed to load stories", err)
	}
	return stories, nil
}

// Publish makes the requester's story public, provided generation is
// complete and moderation approved it.
func (s *StoryService) Publish(ctx context.Context, requesterID, storyID uuid.UUID) error {
	return s.mutateOwned(ctx, requesterID, storyID, "publish_story", func(story *domain.Story) error {
		return story.Publish()
	})
}

// Unpublish withdraws the requester's story from public view.
func (s *StoryService) Unpublish(ctx context.Context, requesterID, storyID uuid.UUID) error {
	return s.mutateOwned(ctx, requesterID, storyID, "unpublish_story", func(story *domain.Story) error {
		story.Unpublish()
		return nil
	})
}

// Moderate applies a moderation decision to a story. Intended for admin and
// review tooling; ownership is not required.
func (s *StoryService) Moderate(ctx context.Context, storyID uuid.UUID, status domain.ModerationStatus) error {
	return s.mutate(ctx, storyID, "moderate_story", func(story *domain.Story) error {
		return story.SetModerationStatus(status)
	})
}

// RecordView counts one view on a story.
func (s *StoryService) RecordView(ctx context.Context, storyID uuid.UUID) error {
	return s.mutate(ctx, storyID, "record_view", func(story *domain.Story) error {
		story.RecordView()
		return nil
	})
}

// AddLike counts one like on a story.
func (s *StoryService) AddLike(ctx context.Context, storyID uuid.UUID) error {
	return s.mutate(ctx, storyID, "add_like", func(story *domain.Story) error {
		story.AddLike()
		return nil
	})
}

// RemoveLike removes one like from a story.
func (s *StoryService) RemoveLike(ctx context.Context, storyID uuid.UUID) error {
	return s.mutate(ctx, storyID, "remove_like", func(story *domain.Story) error {
		return story.RemoveLike()
	})
}

// RecordShare counts one share on a story.
func (s *StoryService) RecordShare(ctx context.Context, storyID uuid.UUID) error {
	return s.mutate(ctx, storyID, "record_share", func(story *domain.Story) error {
		story.RecordShare()
		return nil
	})
}

// AddRating records an explicit 1-5 star rating.
func (s *StoryService) AddRating(ctx context.Context, storyID uuid.UUID, rating float64) error {
	return s.mutate(ctx, storyID, "add_rating", func(story *domain.Story) error {
		return story.AddRating(rating)
	})
}

// AddTag attaches a tag to the requester's story.
func (s *StoryService) AddTag(ctx context.Context, requesterID, storyID uuid.UUID, tag string) error {
	return s.mutateOwned(ctx, requesterID, storyID, "add_tag", func(story *domain.Story) error {
		return story.AddTag(tag)
	})
}

// AddImage attaches an illustration URL to the requester's story.
func (s *StoryService) AddImage(ctx context.Context, requesterID, storyID uuid.UUID, url string) error {
	return s.mutateOwned(ctx, requesterID, storyID, "add_image", func(story *domain.Story) error {
		return story.AddImageURL(url)
	})
}

// AddLearningGoal attaches a learning goal to the requester's story.
func (s *StoryService) AddLearningGoal(ctx context.Context, requesterID, storyID, goalID uuid.UUID) error {
	return s.mutateOwned(ctx, requesterID, storyID, "add_learning_goal", func(story *domain.Story) error {
		return story.AddLearningGoal(goalID)
	})
}

// DeleteStory removes the requester's story permanently.
func (s *StoryService) DeleteStory(ctx context.Context, requesterID, storyID uuid.UUID) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return wrapError("delete_story", "failed to load story", err)
	}
	if story.UserID != requesterID {
		return ErrNotOwned
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.stories.WithTx(tx).Delete(ctx, storyID)
	})
	if err != nil {
		return wrapError("delete_story", "failed to delete story", err)
	}
	return nil
}

// mutateOwned is mutate with an ownership check.
func (s *StoryService) mutateOwned(ctx context.Context, requesterID, storyID uuid.UUID, operation string, fn func(*domain.Story) error) error {
	return s.mutate(ctx, storyID, operation, func(story *domain.Story) error {
		if story.UserID != requesterID {
			return ErrNotOwned
		}
		return fn(story)
	})
}

// mutate loads a story, applies fn, and persists the result in a
// transaction. Domain events recorded by fn are published after commit.
func (s *StoryService) mutate(ctx context.Context, storyID uuid.UUID, operation string, fn func(*domain.Story) error) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return wrapError(operation, "failed to load story", err)
	}

	if err := fn(story); err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.stories.WithTx(tx).Update(ctx, story)
	})
	if err != nil {
		return wrapError(operation, "failed to save story", err)
	}

	s.publishStoryEvents(ctx, story)
	return nil
}

func (s *StoryService) publishStoryEvents(ctx context.Context, story *domain.Story) {
	publishEvents(ctx, s.emitter, s.logger, story)
}

func (s *StoryService) publishUserEvents(ctx context.Context, user *domain.User) {
	publishEvents(ctx, s.emitter, s.logger, user)
}
