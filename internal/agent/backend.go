package agent

import (
	"context"
	"time"
)

// Generator produces raw reply text for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// BackendOptions configures a Generator created through the Registry.
type BackendOptions struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}
