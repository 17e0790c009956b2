package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/generation"
)

// StoryGenerationScheduler creates story generation tasks and places them on
// the queue. Services depend on this rather than on task construction.
type StoryGenerationScheduler struct {
	queue     TaskQueueWriter
	stories   StoryAccess
	generator generation.StoryGenerator
	aiModel   string
	logger    *slog.Logger
}

// NewStoryGenerationScheduler wires a scheduler to the queue and the
// dependencies every generation task needs.
func NewStoryGenerationScheduler(
	queue TaskQueueWriter,
	stories StoryAccess,
	generator generation.StoryGenerator,
	aiModel string,
	logger *slog.Logger,
) (*StoryGenerationScheduler, error) {
	if queue == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if stories == nil {
		return nil, ErrNilStoryAccess
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryGenerationScheduler{
		queue:     queue,
		stories:   stories,
		generator: generator,
		aiModel:   aiModel,
		logger:    logger.With(slog.String("component", "story_generation_scheduler")),
	}, nil
}

// Schedule enqueues a generation task for the story.
func (s *StoryGenerationScheduler) Schedule(_ context.Context, storyID uuid.UUID) error {
	generationTask, err := NewStoryGenerationTask(storyID, s.stories, s.generator, s.aiModel, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create generation task: %w", err)
	}
	if err := s.queue.Enqueue(generationTask); err != nil {
		return fmt.Errorf("failed to enqueue generation task: %w", err)
	}
	s.logger.Info("story generation scheduled",
		"story_id", storyID,
		"task_id", generationTask.ID())
	return nil
}
