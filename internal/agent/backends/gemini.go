package backends

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/gosuda/honeypot/internal/agent"
)

const (
	GeminiName          = "gemini"
	DefaultGeminiURL    = "https://generativelanguage.googleapis.com/"
	DefaultGeminiModel  = "gemini-pro"
	defaultGeminiAPIVer = "v1beta"
)

// ErrMissingAPIKey is returned when the Gemini backend is created without a key.
var ErrMissingAPIKey = errors.New("backends: gemini api key is required") //nolint:gochecknoglobals // sentinel error

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

func NewGeminiBackend(opts agent.BackendOptions) (agent.Generator, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	httpOpts := genai.HTTPOptions{
		BaseURL:    baseURL,
		APIVersion: defaultGeminiAPIVer,
	}
	if opts.Timeout > 0 {
		timeout := opts.Timeout
		httpOpts.Timeout = &timeout
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: opts.Timeout},
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("backends.NewGeminiBackend: %w", err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Generate(ctx context.Context, prompt agent.Prompt) (string, error) {
	var cfg *genai.GenerateContentConfig
	if prompt.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		}
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("backends.GeminiBackend.Generate: %w: status %d: %s",
				ErrUpstream, apiErr.Code, strings.TrimSpace(apiErr.Message))
		}
		return "", fmt.Errorf("backends.GeminiBackend.Generate: %w", err)
	}

	out := resp.Text()
	if out == "" {
		return "", fmt.Errorf("backends.GeminiBackend.Generate: %w", agent.ErrEmptyReply)
	}

	return out, nil
}
