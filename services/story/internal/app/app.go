package app

import (
	"context"
	"errors"
	"time"

	"storyforge/internal/util"
	"storyforge/pkg/ai"
	"storyforge/pkg/domain"
)

// promptTemplate prefixes every caller prompt before it is sent upstream.
const promptTemplate = "Write a creative story based on: "

// BuildPrompt wraps a caller prompt in the story instruction.
func BuildPrompt(userPrompt string) string {
	return promptTemplate + userPrompt
}

// Config wires the app dependencies.
type Config struct {
	Generator ai.TextGenerator
}

// App turns story requests into generated stories.
type App struct {
	generator ai.TextGenerator
}

// New constructs the app.
func New(cfg Config) (*App, error) {
	if cfg.Generator == nil {
		return nil, errors.New("app: text generator required")
	}
	return &App{generator: cfg.Generator}, nil
}

// GenerateStory makes one upstream call per request. Errors from the generator
// are returned unwrapped so callers can classify *ai.APIError and
// ai.ErrUpstreamUnavailable.
func (a *App) GenerateStory(ctx context.Context, req domain.StoryRequest) (string, error) {
	logger := util.LoggerFromContext(ctx)
	start := time.Now()
	story, err := a.generator.GenerateText(ctx, BuildPrompt(req.Prompt), req.MaxTokens)
	if err != nil {
		logger.Warn("story generation failed",
			"err", err,
			"max_tokens", req.MaxTokens,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}
	if story == "" {
		logger.Warn("upstream returned no story text", "max_tokens", req.MaxTokens)
	}
	logger.Info("story generated",
		"prompt_chars", len(req.Prompt),
		"max_tokens", req.MaxTokens,
		"story_chars", len(story),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return story, nil
}
