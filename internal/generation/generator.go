package generation

import (
	"context"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// Request carries everything the generator needs to write one story.
type Request struct {
	// Title and Prompt come from the story draft created by the user.
	Title  string
	Prompt string

	// Genre is optional; when set it steers the tone of the story.
	Genre string

	// Character is the protagonist. Its traits and recent memories are
	// woven into the prompt so stories stay consistent across sessions.
	Character *domain.Character

	// LearningGoals are the educational objectives the story should touch.
	LearningGoals []*domain.LearningGoal

	// ChildAge controls vocabulary and story length. Zero means unknown,
	// in which case a mid-range default is used.
	ChildAge int
}

// Result is the parsed output of a successful generation call.
type Result struct {
	Content string
	Summary string
	Scenes  []domain.StoryScene
}

// StoryGenerator is the boundary interface to the LLM backend.
type StoryGenerator interface {
	// GenerateStory writes a story for the given request. Implementations
	// must honor ctx cancellation and return the sentinel errors from this
	// package for classifiable failures.
	GenerateStory(ctx context.Context, req Request) (*Result, error)
}
