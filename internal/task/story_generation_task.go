package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/generation"
	"github.com/dschilow/Avatales-Backend-sub001/internal/moderation"
)

// Common errors
var (
	ErrNilStoryAccess = errors.New("story access cannot be nil")
	ErrNilGenerator   = errors.New("generator cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyStoryID   = errors.New("story ID cannot be empty")
)

// StoryAccess is the slice of the service layer the generation task needs.
// The adapter in the service package implements it; defining the interface
// here keeps the dependency pointing from services to tasks, not back.
type StoryAccess interface {
	// GetStory retrieves a story by ID.
	GetStory(ctx context.Context, storyID uuid.UUID) (*domain.Story, error)

	// SaveStory persists the story's current state and publishes its
	// recorded domain events.
	SaveStory(ctx context.Context, story *domain.Story) error

	// GetCharacter retrieves the story's protagonist.
	GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error)

	// GetLearningGoals resolves the goal IDs attached to a story.
	GetLearningGoals(ctx context.Context, ids []uuid.UUID) ([]*domain.LearningGoal, error)

	// OwnerAge returns the story owner's age in years, or zero when the
	// owner has no recorded date of birth.
	OwnerAge(ctx context.Context, userID uuid.UUID) (int, error)
}

// storyGenerationPayload is the serialized task data.
type storyGenerationPayload struct {
	StoryID uuid.UUID `json:"story_id"`
}

// StoryGenerationTask drives one story through generation: it marks the
// story in progress, calls the generator, screens the result, and persists
// the outcome. Failures are recorded on the story rather than retried here.
type StoryGenerationTask struct {
	id        uuid.UUID
	storyID   uuid.UUID
	stories   StoryAccess
	generator generation.StoryGenerator
	aiModel   string
	logger    *slog.Logger
	status    TaskStatus
}

// NewStoryGenerationTask creates a generation task for the given story.
func NewStoryGenerationTask(
	storyID uuid.UUID,
	stories StoryAccess,
	generator generation.StoryGenerator,
	aiModel string,
	logger *slog.Logger,
) (*StoryGenerationTask, error) {
	if stories == nil {
		return nil, ErrNilStoryAccess
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if storyID == uuid.Nil {
		return nil, ErrEmptyStoryID
	}

	return &StoryGenerationTask{
		id:        uuid.New(),
		storyID:   storyID,
		stories:   stories,
		generator: generator,
		aiModel:   aiModel,
		logger:    logger.With("task_type", TaskTypeStoryGeneration, "story_id", storyID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *StoryGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *StoryGenerationTask) Type() string {
	return TaskTypeStoryGeneration
}

// Payload returns the task data as a byte slice.
func (t *StoryGenerationTask) Payload() []byte {
	data, err := json.Marshal(storyGenerationPayload{StoryID: t.storyID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status.
func (t *StoryGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the full generation lifecycle for the story.
func (t *StoryGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting story generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	story, err := t.stories.GetStory(ctx, t.storyID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve story", "error", err)
		return fmt.Errorf("failed to retrieve story: %w", err)
	}

	if err := story.StartGeneration(t.aiModel); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("story is not in a generatable state", "error", err)
		return fmt.Errorf("story is not in a generatable state: %w", err)
	}
	if err := t.stories.SaveStory(ctx, story); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to mark story in progress: %w", err)
	}

	req, err := t.buildRequest(ctx, story)
	if err != nil {
		return t.failStory(ctx, story, err)
	}

	result, err := t.generator.GenerateStory(ctx, req)
	if err != nil {
		return t.failStory(ctx, story, err)
	}

	if err := story.CompleteGeneration(result.Content, result.Summary, result.Scenes); err != nil {
		return t.failStory(ctx, story, err)
	}

	decision := moderation.Screen(story.Content)
	if err := story.SetModerationStatus(decision.Status); err != nil {
		t.logger.Error("failed to apply moderation decision", "error", err)
	}
	t.logger.Info("story content screened",
		"moderation_status", string(decision.Status),
		"reasons", decision.Reasons)

	if err := t.stories.SaveStory(ctx, story); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to save generated story: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("story generation task completed",
		"word_count", story.WordCount,
		"scene_count", len(story.Scenes))
	return nil
}

// buildRequest assembles the generation request from the story's character,
// goals and owner.
func (t *StoryGenerationTask) buildRequest(ctx context.Context, story *domain.Story) (generation.Request, error) {
	character, err := t.stories.GetCharacter(ctx, story.CharacterID)
	if err != nil {
		return generation.Request{}, fmt.Errorf("failed to load character: %w", err)
	}

	var goals []*domain.LearningGoal
	if len(story.LearningGoalIDs) > 0 {
		goals, err = t.stories.GetLearningGoals(ctx, story.LearningGoalIDs)
		if err != nil {
			return generation.Request{}, fmt.Errorf("failed to load learning goals: %w", err)
		}
	}

	age, err := t.stories.OwnerAge(ctx, story.UserID)
	if err != nil {
		// Age only tunes the vocabulary; fall back to the default rather
		// than failing the whole generation.
		t.logger.Warn("failed to load owner age, using default", "error", err)
		age = 0
	}

	return generation.Request{
		Title:         story.Title,
		Prompt:        story.Prompt,
		Genre:         story.Genre,
		Character:     character,
		LearningGoals: goals,
		ChildAge:      age,
	}, nil
}

// failStory records the failure on the story and persists it. The original
// error is returned for the worker pool to log.
func (t *StoryGenerationTask) failStory(ctx context.Context, story *domain.Story, cause error) error {
	t.status = TaskStatusFailed
	t.logger.Error("story generation failed", "error", cause)

	if err := story.FailGeneration(cause.Error()); err != nil {
		t.logger.Error("failed to record generation failure on story", "error", err)
	} else if err := t.stories.SaveStory(ctx, story); err != nil {
		t.logger.Error("failed to save failed story", "error", err)
	}

	return fmt.Errorf("story generation failed: %w", cause)
}
