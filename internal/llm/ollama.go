package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/destek-ai/destek/internal/config"
	"github.com/destek-ai/destek/internal/models"
)

// OllamaGenerator talks to an Ollama server's /api/chat endpoint with
// streaming disabled.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaGenerator creates a generator from config.
func NewOllamaGenerator(cfg config.LLMConfig) (*OllamaGenerator, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("llm base_url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaGenerator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends the full conversation and returns the assistant reply.
// History roles are mapped through Role.GenerationRole, so stored "model"
// turns go out as "assistant".
func (g *OllamaGenerator) Generate(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role.GenerationRole(), Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	payload := map[string]any{
		"model":    g.model,
		"messages": messages,
		"stream":   false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat request failed: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Message.Content == "" {
		return "", errors.New("chat response contained no content")
	}
	return parsed.Message.Content, nil
}

// Model returns the configured model name.
func (g *OllamaGenerator) Model() string {
	return g.model
}

// Close is a no-op for OllamaGenerator.
func (g *OllamaGenerator) Close() error {
	return nil
}
