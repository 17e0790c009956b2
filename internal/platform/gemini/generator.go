package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dschilow/Avatales-Backend-sub001/internal/config"
	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/generation"
)

const (
	defaultMaxRetries    = 3
	defaultBaseDelaySecs = 2
)

// responseSchema is the JSON shape the prompt instructs the model to return.
type responseSchema struct {
	Summary string          `json:"summary"`
	Scenes  []responseScene `json:"scenes"`
}

type responseScene struct {
	Number         int              `json:"number"`
	Content        string           `json:"content"`
	PrimaryEmotion string           `json:"primary_emotion"`
	Choices        []responseChoice `json:"choices"`
}

type responseChoice struct {
	Text            string             `json:"text"`
	Outcome         string             `json:"outcome"`
	TraitInfluences map[string]float64 `json:"trait_influences"`
}

// Generator implements generation.StoryGenerator against the Gemini API.
type Generator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

var _ generation.StoryGenerator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed story generator.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.StoryConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		client: client,
		model:  cfg.Model,
	}, nil
}

// GenerateStory implements generation.StoryGenerator.GenerateStory.
func (g *Generator) GenerateStory(ctx context.Context, req generation.Request) (*generation.Result, error) {
	prompt, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	parsed, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return buildResult(parsed)
}

// callWithRetry calls the Gemini API with exponential backoff and jitter.
// Permanent errors (blocked content, malformed responses) are returned
// immediately; transient errors are retried.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		g.logger.InfoContext(ctx, "calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", defaultMaxRetries+1)

		parsed, err := g.callOnce(ctx, prompt)
		if err == nil {
			return parsed, nil
		}

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "permanent generation error, not retrying", "error", err)
			return nil, err
		}

		if attempt >= defaultMaxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", defaultMaxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, defaultMaxRetries)
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(defaultBaseDelaySecs) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))
		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attempt+1,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *Generator) callOnce(ctx context.Context, prompt string) (*responseSchema, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini API call error", "error", err)
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: safety filter triggered", generation.ErrContentBlocked)
	}

	text := resp.Text()
	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return &parsed, nil
}

// buildResult converts the wire response into validated domain scenes and
// the assembled story content.
func buildResult(parsed *responseSchema) (*generation.Result, error) {
	if len(parsed.Scenes) == 0 {
		return nil, fmt.Errorf("%w: response contains no scenes", generation.ErrInvalidResponse)
	}

	scenes := make([]domain.StoryScene, 0, len(parsed.Scenes))
	var content strings.Builder
	for i, raw := range parsed.Scenes {
		number := raw.Number
		if number <= 0 {
			number = i + 1
		}

		choices := make([]domain.SceneChoice, 0, len(raw.Choices))
		for _, c := range raw.Choices {
			choices = append(choices, domain.SceneChoice{
				Text:            c.Text,
				Outcome:         c.Outcome,
				TraitInfluences: c.TraitInfluences,
			})
		}

		scene, err := domain.NewStoryScene(number, raw.Content, raw.PrimaryEmotion, choices)
		if err != nil {
			return nil, fmt.Errorf("%w: scene %d: %v", generation.ErrInvalidResponse, number, err)
		}
		scenes = append(scenes, scene)

		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(raw.Content)
	}

	return &generation.Result{
		Content: content.String(),
		Summary: parsed.Summary,
		Scenes:  scenes,
	}, nil
}
