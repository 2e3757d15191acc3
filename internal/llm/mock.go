package llm

import (
	"context"

	"github.com/destek-ai/destek/internal/models"
)

// MockGenerator returns a fixed reply and records the last call. For tests.
type MockGenerator struct {
	Reply string
	Err   error

	LastSystemPrompt string
	LastHistory      []models.Message
	LastUserMessage  string
	CallCount        int
}

// Generate records the call and returns the fixed reply or error.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error) {
	m.CallCount++
	m.LastSystemPrompt = systemPrompt
	m.LastHistory = history
	m.LastUserMessage = userMessage
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Model returns a fixed name.
func (m *MockGenerator) Model() string {
	return "mock"
}

// Close is a no-op.
func (m *MockGenerator) Close() error {
	return nil
}
