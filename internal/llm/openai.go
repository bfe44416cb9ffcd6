// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

// OpenAIClient calls the OpenAI chat completions API, or any server that
// speaks it when BaseURL is set.
type OpenAIClient struct {
	client      *openai.Client
	keyless     bool // no API key and no custom endpoint
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	usage       types.TokenUsage
}

var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client. A missing API key is not an error here;
// every call fails instead.
func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	cfg = cfg.withDefaults()

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		keyless:     cfg.APIKey == "" && cfg.BaseURL == "",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

// Complete sends a system and a user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.keyless {
		return nil, fmt.Errorf("%w: no API key configured", ErrServiceFailure)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := c.temperature
	if temperature == 0 {
		// The SDK omits a zero temperature from the request body, which
		// leaves the server default in place.
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: string(types.RoleSystem), Content: req.System},
			{Role: string(types.RoleUser), Content: req.Prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, c.classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", ErrServiceFailure)
	}

	usage := types.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	c.usage = c.usage.Add(usage)

	return &Response{Text: resp.Choices[0].Message.Content, Usage: usage}, nil
}

// Usage returns cumulative token usage.
func (c *OpenAIClient) Usage() types.TokenUsage {
	return c.usage
}

// classifyError wraps SDK errors into ErrServiceFailure.
func (c *OpenAIClient) classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return fmt.Errorf("%w: credential or permission issue: %s", ErrServiceFailure, apiErr.Message)
		case 404:
			return fmt.Errorf("%w: model not found: %s", ErrServiceFailure, c.model)
		case 429:
			return fmt.Errorf("%w: rate limited: %s", ErrServiceFailure, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", ErrServiceFailure, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: status %d: %v", ErrServiceFailure, reqErr.HTTPStatusCode, reqErr.Err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out after %s", ErrServiceFailure, c.timeout)
	}

	return fmt.Errorf("%w: %v", ErrServiceFailure, err)
}
