// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/paper-abstractor/internal/abstract"
	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// Abstractor summarizes extracted documents through a Backend.
type Abstractor struct {
	backend Backend
	limiter *Limiter
	ai      types.AIConfig
	cfg     types.AbstractorConfig
}

// NewAbstractor wires a backend and a shared limiter. A nil limiter
// disables rate limiting.
func NewAbstractor(backend Backend, limiter *Limiter, aiCfg types.AIConfig, cfg types.AbstractorConfig) *Abstractor {
	return &Abstractor{backend: backend, limiter: limiter, ai: aiCfg, cfg: cfg}
}

// Summarize sends doc to the backend and parses the answer. Every attempt
// waits on the limiter first; failed attempts are retried with a linearly
// growing delay.
func (a *Abstractor) Summarize(ctx context.Context, doc types.Document) (types.AbstractRecord, error) {
	prompt, err := renderPrompt(a.cfg.Language, a.cfg.MaxLength, prepareInput(doc, a.cfg))
	if err != nil {
		return types.AbstractRecord{}, fmt.Errorf("rendering prompt: %w", err)
	}

	attempts := max(1, a.ai.RetryAttempts)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return types.AbstractRecord{}, err
			}
		}

		text, err := a.backend.Generate(ctx, prompt)
		if err == nil {
			return abstract.Parse(stripCodeFence(text), abstract.Options{
				Language:         a.cfg.Language,
				ModelID:          a.backend.Model(),
				MetadataKeywords: doc.Metadata.Keywords,
				ExtractKeywords:  a.cfg.ExtractKeywords,
			}), nil
		}
		lastErr = err
		logger.Warn("abstract attempt %d/%d for %s failed: %v", attempt+1, attempts, doc.Path, err)

		if attempt+1 < attempts {
			delay := a.ai.RetryDelay * time.Duration(attempt+1)
			select {
			case <-ctx.Done():
				return types.AbstractRecord{}, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return types.AbstractRecord{}, fmt.Errorf("generating abstract after %d attempts: %w", attempts, lastErr)
}
