// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai calls a generative AI API to summarize extracted papers and
// parses the answer into a typed abstract.
package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
type Backend interface {
	// Generate sends prompt and returns the model's text answer.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier recorded on generated abstracts.
	Model() string
}

// NewBackend returns the backend selected by cfg.Provider.
func NewBackend(cfg types.AIConfig) (Backend, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case types.ProviderGemini, "":
		return &GeminiBackend{
			APIKey:      cfg.APIKey,
			ModelID:     cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Client:      client,
		}, nil
	case types.ProviderAnthropic:
		return &ClaudeBackend{
			APIKey:      cfg.APIKey,
			ModelID:     cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Client:      client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
