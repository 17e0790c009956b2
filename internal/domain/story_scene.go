package domain

import (
	"errors"
	"strings"
)

// MaxChoicesPerScene bounds the interactive choices a scene may offer.
const MaxChoicesPerScene = 4

// Common validation errors for StoryScene.
var (
	ErrInvalidSceneNumber    = errors.New("scene number must be positive")
	ErrEmptySceneContent     = errors.New("scene content cannot be empty")
	ErrTooManyChoices        = errors.New("a scene can offer at most 4 choices")
	ErrEmptyChoiceText       = errors.New("choice text cannot be empty")
	ErrInfluenceOutOfRange   = errors.New("trait influence weights must be between 0 and 1")
)

// SceneChoice is an interactive decision point inside a scene. Choosing it
// nudges the named character traits by the given weights.
type SceneChoice struct {
	Text            string             `json:"text"`
	Outcome         string             `json:"outcome,omitempty"`
	TraitInfluences map[string]float64 `json:"trait_influences,omitempty"`
}

// Validate checks the choice's invariants.
func (c SceneChoice) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyChoiceText
	}
	for _, weight := range c.TraitInfluences {
		if weight < 0 || weight > 1 {
			return ErrInfluenceOutOfRange
		}
	}
	return nil
}

// StoryScene is one ordered section of a story's text, with an optional set
// of interactive choices.
type StoryScene struct {
	Number             int           `json:"number"`
	Content            string        `json:"content"`
	PrimaryEmotion     string        `json:"primary_emotion,omitempty"`
	WordCount          int           `json:"word_count"`
	ReadingTimeMinutes int           `json:"reading_time_minutes"`
	Choices            []SceneChoice `json:"choices,omitempty"`
}

// NewStoryScene builds a scene and derives its word count and reading time
// from the content.
func NewStoryScene(number int, content, primaryEmotion string, choices []SceneChoice) (StoryScene, error) {
	scene := StoryScene{
		Number:         number,
		Content:        content,
		PrimaryEmotion: primaryEmotion,
		Choices:        choices,
	}
	scene.WordCount = countWords(content)
	scene.ReadingTimeMinutes = readingTimeMinutes(scene.WordCount)

	if err := scene.Validate(); err != nil {
		return StoryScene{}, err
	}
	return scene, nil
}

// Validate checks the scene's invariants.
func (s StoryScene) Validate() error {
	if s.Number <= 0 {
		return ErrInvalidSceneNumber
	}
	if strings.TrimSpace(s.Content) == "" {
		return ErrEmptySceneContent
	}
	if len(s.Choices) > MaxChoicesPerScene {
		return ErrTooManyChoices
	}
	for _, choice := range s.Choices {
		if err := choice.Validate(); err != nil {
			return err
		}
	}
	return nil
}
