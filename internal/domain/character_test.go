package domain

import (
	"testing"

	"github.com/google/uuid"
)

func newTestCharacter(t *testing.T) *Character {
	t.Helper()
	character, err := NewCharacter(uuid.New(), "Pip", "explorer", map[string]int{"courage": 40})
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	character.ClearDomainEvents()
	return character
}

func TestNewCharacter(t *testing.T) {
	t.Parallel()

	character, err := NewCharacter(uuid.New(), " Pip ", "explorer", map[string]int{"Courage": 150, "empathy": -10})
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	if character.Name != "Pip" {
		t.Errorf("Expected trimmed name, got %q", character.Name)
	}
	if character.Level != 1 {
		t.Errorf("Expected level 1, got %d", character.Level)
	}
	// Starting values are clamped and trait names lowercased.
	if character.TraitValue("courage") != TraitMaxValue {
		t.Errorf("Expected clamped courage 100, got %d", character.TraitValue("courage"))
	}
	if character.TraitValue("empathy") != TraitMinValue {
		t.Errorf("Expected clamped empathy 0, got %d", character.TraitValue("empathy"))
	}

	if _, err := NewCharacter(uuid.Nil, "Pip", "", nil); err != ErrEmptyCharacterOwner {
		t.Errorf("Expected ErrEmptyCharacterOwner, got %v", err)
	}
	if _, err := NewCharacter(uuid.New(), "  ", "", nil); err != ErrEmptyCharacterName {
		t.Errorf("Expected ErrEmptyCharacterName, got %v", err)
	}
}

func TestAdjustTrait(t *testing.T) {
	t.Parallel()

	character := newTestCharacter(t)

	if err := character.AdjustTrait("Courage", 15); err != nil {
		t.Fatalf("AdjustTrait: %v", err)
	}
	if character.TraitValue("courage") != 55 {
		t.Errorf("Expected courage 55, got %d", character.TraitValue("courage"))
	}

	// Clamped at the upper bound.
	if err := character.AdjustTrait("courage", 100); err != nil {
		t.Fatalf("AdjustTrait: %v", err)
	}
	if character.TraitValue("courage") != TraitMaxValue {
		t.Errorf("Expected courage clamped to 100, got %d", character.TraitValue("courage"))
	}

	// A new trait starts from zero.
	if err := character.AdjustTrait("kindness", 10); err != nil {
		t.Fatalf("AdjustTrait: %v", err)
	}
	if character.TraitValue("kindness") != 10 {
		t.Errorf("Expected kindness 10, got %d", character.TraitValue("kindness"))
	}

	// Clamped at the lower bound.
	if err := character.AdjustTrait("kindness", -50); err != nil {
		t.Fatalf("AdjustTrait: %v", err)
	}
	if character.TraitValue("kindness") != TraitMinValue {
		t.Errorf("Expected kindness clamped to 0, got %d", character.TraitValue("kindness"))
	}

	if err := character.AdjustTrait("  ", 5); err != ErrEmptyTraitName {
		t.Errorf("Expected ErrEmptyTraitName, got %v", err)
	}
}

func TestAdjustTraitNoOpEmitsNothing(t *testing.T) {
	t.Parallel()

	character := newTestCharacter(t)

	if err := character.AdjustTrait("courage", 0); err != nil {
		t.Fatalf("AdjustTrait: %v", err)
	}
	if len(character.DomainEvents()) != 0 {
		t.Error("Zero delta must not emit an event")
	}

	// A delta fully absorbed by clamping is also a no-op.
	if err := character.AdjustTrait("empathy", -5); err != nil {
		t.Fatalf("AdjustTrait: %v", err)
	}
	if len(character.DomainEvents()) != 0 {
		t.Error("Clamped-away delta must not emit an event")
	}
}

func TestAddMemoryCap(t *testing.T) {
	t.Parallel()

	character := newTestCharacter(t)
	if err := character.AddMemory(uuid.New(), "  ", ""); err != ErrEmptyMemory {
		t.Errorf("Expected ErrEmptyMemory, got %v", err)
	}

	for i := 0; i < MaxCharacterMemories+5; i++ {
		if err := character.AddMemory(uuid.New(), "met a friendly dragon", "joy"); err != nil {
			t.Fatalf("AddMemory #%d: %v", i+1, err)
		}
	}
	if len(character.Memories) != MaxCharacterMemories {
		t.Errorf("Expected memory log capped at %d, got %d", MaxCharacterMemories, len(character.Memories))
	}
}

func TestGainExperienceLevels(t *testing.T) {
	t.Parallel()

	character := newTestCharacter(t)

	if err := character.GainExperience(-1); err != ErrNegativeExperience {
		t.Errorf("Expected ErrNegativeExperience, got %v", err)
	}

	if err := character.GainExperience(50); err != nil {
		t.Fatalf("GainExperience: %v", err)
	}
	if character.Level != 1 {
		t.Errorf("Expected level 1 at 50 XP, got %d", character.Level)
	}

	if err := character.GainExperience(50); err != nil {
		t.Fatalf("GainExperience: %v", err)
	}
	if character.Level != 2 {
		t.Errorf("Expected level 2 at 100 XP, got %d", character.Level)
	}

	levelUps := 0
	for _, e := range character.DomainEvents() {
		if e.Kind == EventCharacterLeveledUp {
			levelUps++
		}
	}
	if levelUps != 1 {
		t.Errorf("Expected one level-up event, got %d", levelUps)
	}

	if err := character.GainExperience(250); err != nil {
		t.Fatalf("GainExperience: %v", err)
	}
	if character.Level != 4 {
		t.Errorf("Expected level 4 at 350 XP, got %d", character.Level)
	}
}
