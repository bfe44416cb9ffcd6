// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package llm builds prompts and sends them to a text-completion service.
// Providers: OpenAI chat completions, AWS Bedrock Converse, and Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

// ErrServiceFailure indicates the completion call failed (network, auth,
// rate limit, malformed or empty response, missing credential).
var ErrServiceFailure = errors.New("completion service failure")

const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"

	defaultMaxTokens = 2048
	defaultTimeout   = 5 * time.Minute
)

// defaultModels is used when ClientConfig.Model is empty.
var defaultModels = map[string]string{
	ProviderOpenAI:  "gpt-3.5-turbo",
	ProviderBedrock: "anthropic.claude-3-haiku-20240307-v1:0",
	ProviderGemini:  "gemini-2.0-flash",
}

// Request is a single completion request.
type Request struct {
	System string // System instruction
	Prompt string // User prompt
}

// Response is the text of the first returned choice.
type Response struct {
	Text  string
	Usage types.TokenUsage
}

// Completer sends a prompt to a completion service.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	// Usage returns cumulative token usage across calls.
	Usage() types.TokenUsage
}

// ClientConfig configures a completion client. It is passed explicitly; no
// client reads credentials from the environment.
type ClientConfig struct {
	Provider    string        // openai (default), bedrock, gemini
	Model       string        // Provider model ID (default per provider)
	APIKey      string        // OpenAI / Gemini credential; checked at call time
	BaseURL     string        // Optional endpoint override (OpenAI-compatible servers)
	Region      string        // AWS region (bedrock)
	Profile     string        // AWS shared config profile (bedrock, optional)
	MaxTokens   int           // Output cap (default 2048)
	Temperature float32       // Sampling temperature (default 0)
	Timeout     time.Duration // Per-request timeout (default 5m)
}

// withDefaults fills zero-valued fields.
func (c ClientConfig) withDefaults() ClientConfig {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// NewCompleter returns the client for cfg.Provider.
func NewCompleter(ctx context.Context, cfg ClientConfig) (Completer, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderBedrock:
		return NewBedrockClient(ctx, cfg)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: %s, %s, %s)",
			cfg.Provider, ProviderOpenAI, ProviderBedrock, ProviderGemini)
	}
}
