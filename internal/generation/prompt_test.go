package generation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

func TestBuildPromptRequiresPrompt(t *testing.T) {
	_, err := BuildPrompt(Request{Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestBuildPromptIncludesCharacterAndGoals(t *testing.T) {
	character, err := domain.NewCharacter(uuid.New(), "Luna", "explorer", map[string]int{
		"courage":   70,
		"curiosity": 85,
	})
	require.NoError(t, err)
	require.NoError(t, character.AddMemory(uuid.New(), "found a hidden cave", "excited"))

	goal, err := domain.NewLearningGoal("Learn to share", "social", domain.DifficultyEasyGoal, 6, 3)
	require.NoError(t, err)

	prompt, err := BuildPrompt(Request{
		Title:         "The Hidden Cave",
		Prompt:        "Luna explores a mountain",
		Genre:         "adventure",
		Character:     character,
		LearningGoals: []*domain.LearningGoal{goal},
		ChildAge:      6,
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "6 year old")
	assert.Contains(t, prompt, "Luna")
	assert.Contains(t, prompt, "explorer")
	assert.Contains(t, prompt, "courage (70/100)")
	assert.Contains(t, prompt, "found a hidden cave")
	assert.Contains(t, prompt, "Learn to share")
	assert.Contains(t, prompt, "Genre: adventure")
	assert.Contains(t, prompt, `"scenes"`)
}

func TestBuildPromptDefaultsAge(t *testing.T) {
	prompt, err := BuildPrompt(Request{Prompt: "a quiet bedtime story"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "8 year old")
}

func TestBuildPromptLimitsMemories(t *testing.T) {
	character, err := domain.NewCharacter(uuid.New(), "Max", "", nil)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		require.NoError(t, character.AddMemory(uuid.New(), "memory number "+string(rune('a'+i)), ""))
	}

	prompt, err := BuildPrompt(Request{Prompt: "a day at the lake", Character: character})
	require.NoError(t, err)

	assert.NotContains(t, prompt, "memory number a")
	assert.Contains(t, prompt, "memory number h")
}

func TestBuildPromptDeterministic(t *testing.T) {
	character, err := domain.NewCharacter(uuid.New(), "Pia", "", map[string]int{
		"kindness": 50, "logic": 40, "empathy": 60,
	})
	require.NoError(t, err)

	req := Request{Prompt: "a rainy day", Character: character}
	first, err := BuildPrompt(req)
	require.NoError(t, err)
	second, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
