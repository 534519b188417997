package backends

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gosuda/honeypot/internal/agent"
)

const (
	OllamaName         = "ollama"
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// OllamaBackend talks to a local Ollama server over /api/chat.
type OllamaBackend struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllamaBackend(opts agent.BackendOptions) (agent.Generator, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}, nil
}

func (b *OllamaBackend) Generate(ctx context.Context, prompt agent.Prompt) (string, error) {
	req := ollamaChatRequest{Model: b.model, Stream: false}
	if prompt.System != "" {
		req.Messages = append(req.Messages, ollamaMessage{Role: "system", Content: prompt.System})
	}
	req.Messages = append(req.Messages, ollamaMessage{Role: "user", Content: prompt.User})

	var resp ollamaChatResponse
	if err := postJSON(ctx, b.httpClient, b.baseURL+"/api/chat", nil, req, &resp); err != nil {
		return "", fmt.Errorf("backends.OllamaBackend.Generate: %w", err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("backends.OllamaBackend.Generate: %w", agent.ErrEmptyReply)
	}

	return resp.Message.Content, nil
}
