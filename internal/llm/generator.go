// Package llm wraps the chat-completion backend used to generate replies.
package llm

import (
	"context"

	"github.com/destek-ai/destek/internal/models"
)

// Generator produces a reply given a system prompt, prior conversation, and
// the latest user message.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error)
	Model() string
	Close() error
}
