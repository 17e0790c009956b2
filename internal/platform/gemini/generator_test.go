package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/config"
	"github.com/dschilow/Avatales-Backend-sub001/internal/generation"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/logger"
)

func TestNewGeneratorValidatesConfig(t *testing.T) {
	log := logger.FromContext(context.Background())

	_, err := NewGenerator(context.Background(), nil, config.StoryConfig{GeminiAPIKey: "key", Model: "m"})
	assert.Error(t, err)

	_, err = NewGenerator(context.Background(), log, config.StoryConfig{Model: "m"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGenerator(context.Background(), log, config.StoryConfig{GeminiAPIKey: "key"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestBuildResult(t *testing.T) {
	t.Run("assembles content and scenes", func(t *testing.T) {
		parsed := &responseSchema{
			Summary: "a short trip",
			Scenes: []responseScene{
				{Number: 1, Content: "Luna packed her bag.", PrimaryEmotion: "excited"},
			},
		}

		result, err := buildResult(parsed)
		require.NoError(t, err)
		assert.Equal(t, "a short trip", result.Summary)
		assert.Equal(t, "Luna packed her bag.", result.Content)
		require.Len(t, result.Scenes, 1)
		assert.Equal(t, 1, result.Scenes[0].Number)
		assert.Equal(t, 4, result.Scenes[0].WordCount)
	})

	t.Run("rejects empty scene list", func(t *testing.T) {
		_, err := buildResult(&responseSchema{Summary: "nothing"})
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})
}
