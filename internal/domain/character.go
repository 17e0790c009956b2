package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trait value bounds and progression constants.
const (
	TraitMinValue = 0
	TraitMaxValue = 100

	// MaxCharacterMemories caps the memory log; the oldest memory is
	// dropped when the cap is reached.
	MaxCharacterMemories = 50

	// experiencePerLevel is the flat amount of experience needed to advance
	// one level.
	experiencePerLevel = 100
)

// Common validation errors for Character.
var (
	ErrEmptyCharacterID    = errors.New("character ID cannot be empty")
	ErrEmptyCharacterName  = errors.New("character name cannot be empty")
	ErrEmptyCharacterOwner = errors.New("character owner ID cannot be empty")
	ErrEmptyTraitName      = errors.New("trait name cannot be empty")
	ErrEmptyMemory         = errors.New("memory cannot be empty")
	ErrNegativeExperience  = errors.New("experience points cannot be negative")
)

// CharacterMemory is a remembered moment from a story the character starred
// in. Memories feed back into future story prompts.
type CharacterMemory struct {
	StoryID    uuid.UUID `json:"story_id"`
	Summary    string    `json:"summary"`
	Emotion    string    `json:"emotion,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Character is a child's story protagonist. Traits evolve as stories are
// completed and interactive choices are made.
type Character struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Name       string         `json:"name"`
	Archetype  string         `json:"archetype,omitempty"`
	AvatarURL  string         `json:"avatar_url,omitempty"`
	Traits     map[string]int `json:"traits"`
	Memories   []CharacterMemory `json:"memories,omitempty"`
	Experience int            `json:"experience"`
	Level      int            `json:"level"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	eventRecorder
}

// NewCharacter creates a character for the given owner with an optional set
// of starting traits. Starting trait values are clamped into [0, 100].
func NewCharacter(userID uuid.UUID, name, archetype string, startingTraits map[string]int) (*Character, error) {
	now := time.Now().UTC()
	traits := make(map[string]int, len(startingTraits))
	for trait, value := range startingTraits {
		traits[strings.ToLower(trait)] = clampTrait(value)
	}

	character := &Character{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Archetype: archetype,
		Traits:    traits,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := character.Validate(); err != nil {
		return nil, err
	}

	character.record(character.ID, CharacterCreatedPayload{OwnerID: userID, Name: character.Name})
	return character, nil
}

// Validate checks the structural invariants of the character.
func (c *Character) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCharacterID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyCharacterOwner
	}
	if c.Name == "" {
		return ErrEmptyCharacterName
	}
	return nil
}

// AdjustTrait applies a delta to a trait, clamping the result into [0, 100].
// A zero delta, or a delta that clamps to no change, records no event.
func (c *Character) AdjustTrait(trait string, delta int) error {
	trait = strings.ToLower(strings.TrimSpace(trait))
	if trait == "" {
		return ErrEmptyTraitName
	}
	if delta == 0 {
		return nil
	}

	if c.Traits == nil {
		c.Traits = make(map[string]int)
	}
	current := c.Traits[trait]
	next := clampTrait(current + delta)
	if next == current {
		return nil
	}

	c.Traits[trait] = next
	c.touch()
	c.record(c.ID, TraitAdjustedPayload{Trait: trait, Delta: next - current, NewValue: next})
	return nil
}

// AddMemory appends a memory to the log, evicting the oldest entry once the
// cap is reached.
func (c *Character) AddMemory(storyID uuid.UUID, summary, emotion string) error {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ErrEmptyMemory
	}

	memory := CharacterMemory{
		StoryID:    storyID,
		Summary:    summary,
		Emotion:    emotion,
		OccurredAt: time.Now().UTC(),
	}
	if len(c.Memories) >= MaxCharacterMemories {
		c.Memories = c.Memories[1:]
	}
	c.Memories = append(c.Memories, memory)
	c.touch()
	c.record(c.ID, MemoryAddedPayload{Summary: summary})
	return nil
}

// GainExperience adds story-completion experience and levels the character
// up at every 100 accumulated points. Zero points is a no-op.
func (c *Character) GainExperience(points int) error {
	if points < 0 {
		return ErrNegativeExperience
	}
	if points == 0 {
		return nil
	}

	c.Experience += points
	c.touch()
	c.record(c.ID, ExperienceGainedPayload{Points: points, Total: c.Experience})

	newLevel := c.Experience/experiencePerLevel + 1
	if newLevel > c.Level {
		c.Level = newLevel
		c.record(c.ID, CharacterLeveledUpPayload{Level: newLevel})
	}
	return nil
}

// TraitValue returns the current value of a trait, zero when the trait has
// never been touched.
func (c *Character) TraitValue(trait string) int {
	return c.Traits[strings.ToLower(trait)]
}

// TraitNames returns the names of all traits the character has developed.
func (c *Character) TraitNames() []string {
	names := make([]string, 0, len(c.Traits))
	for name := range c.Traits {
		names = append(names, name)
	}
	return names
}

func (c *Character) touch() {
	c.UpdatedAt = time.Now().UTC()
}

func clampTrait(value int) int {
	if value < TraitMinValue {
		return TraitMinValue
	}
	if value > TraitMaxValue {
		return TraitMaxValue
	}
	return value
}
