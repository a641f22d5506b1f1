package ai

import "context"

// TextGenerator turns a prompt into generated text within a token limit.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}

var _ TextGenerator = (*GeminiClient)(nil)
