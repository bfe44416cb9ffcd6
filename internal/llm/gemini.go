// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

// generator is the part of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient calls the Gemini API through the official genai SDK. The SDK
// client is created on first use so a missing key fails per call.
type GeminiClient struct {
	api         generator
	apiKey      string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	usage       types.TokenUsage
}

var _ Completer = (*GeminiClient)(nil)

// NewGeminiClient returns a client for cfg.Model.
func NewGeminiClient(_ context.Context, cfg ClientConfig) (*GeminiClient, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	cfg = cfg.withDefaults()
	return &GeminiClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (g *GeminiClient) ensureAPI(ctx context.Context) error {
	if g.api != nil {
		return nil
	}
	if g.apiKey == "" {
		return fmt.Errorf("%w: no API key configured", ErrServiceFailure)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("%w: creating genai client: %v", ErrServiceFailure, err)
	}
	g.api = cli.Models
	return nil
}

// Complete generates content and returns the first candidate's text.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := g.ensureAPI(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxTokens),
		Temperature:     &temperature,
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	resp, err := g.api.GenerateContent(callCtx, g.model,
		[]*genai.Content{{Role: string(types.RoleUser), Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: request timed out after %s", ErrServiceFailure, g.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: response has no candidates", ErrServiceFailure)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var usage types.TokenUsage
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	g.usage = g.usage.Add(usage)

	return &Response{Text: text.String(), Usage: usage}, nil
}

// Usage returns cumulative token usage.
func (g *GeminiClient) Usage() types.TokenUsage {
	return g.usage
}
