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

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

const (
	maxRetryAttempts = 3
	baseRetryDelay   = 1 * time.Second
)

// BedrockAPI abstracts the Bedrock Converse call for testing.
type BedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient wraps the AWS Bedrock runtime client.
type BedrockClient struct {
	api         BedrockAPI
	modelID     string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	retryDelay  time.Duration
	usage       types.TokenUsage
}

var _ Completer = (*BedrockClient)(nil)

// NewBedrockClient initializes the AWS SDK client using the standard
// credential chain. Region and profile are optional overrides.
func NewBedrockClient(ctx context.Context, cfg ClientConfig) (*BedrockClient, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderBedrock
	}
	cfg = cfg.withDefaults()

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrServiceFailure, err)
	}

	return NewBedrockClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewBedrockClientWithAPI creates a client with a pre-configured API
// implementation. Used for testing with mock clients.
func NewBedrockClientWithAPI(api BedrockAPI, cfg ClientConfig) *BedrockClient {
	if cfg.Provider == "" {
		cfg.Provider = ProviderBedrock
	}
	cfg = cfg.withDefaults()
	return &BedrockClient{
		api:         api,
		modelID:     cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		retryDelay:  baseRetryDelay,
	}
}

// Complete calls Converse, retrying throttled requests with exponential
// backoff, and returns the text of the output message.
func (c *BedrockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRole(types.RoleUser),
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: req.Prompt}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(c.maxTokens)),
			Temperature: aws.Float32(c.temperature),
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: context cancelled during retry: %v", ErrServiceFailure, ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		out, err := c.api.Converse(callCtx, input)
		cancel()
		if err != nil {
			var throttle *brtypes.ThrottlingException
			if errors.As(err, &throttle) {
				lastErr = err
				continue
			}
			return nil, c.classifyError(err)
		}

		return c.response(out)
	}

	return nil, fmt.Errorf("%w: rate limited after %d retries: %v", ErrServiceFailure, maxRetryAttempts, lastErr)
}

// Usage returns cumulative token usage.
func (c *BedrockClient) Usage() types.TokenUsage {
	return c.usage
}

// response extracts the text blocks of the output message.
func (c *BedrockClient) response(out *bedrockruntime.ConverseOutput) (*Response, error) {
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("%w: response has no message", ErrServiceFailure)
	}

	var text strings.Builder
	found := false
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: response has no text content", ErrServiceFailure)
	}

	var usage types.TokenUsage
	if out.Usage != nil {
		if out.Usage.InputTokens != nil {
			usage.InputTokens = int(*out.Usage.InputTokens)
		}
		if out.Usage.OutputTokens != nil {
			usage.OutputTokens = int(*out.Usage.OutputTokens)
		}
	}
	c.usage = c.usage.Add(usage)

	return &Response{Text: text.String(), Usage: usage}, nil
}

// classifyError wraps Bedrock errors into ErrServiceFailure.
func (c *BedrockClient) classifyError(err error) error {
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrServiceFailure, err)
	}

	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %s", ErrServiceFailure, c.modelID)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out after %s", ErrServiceFailure, c.timeout)
	}

	return fmt.Errorf("%w: %v", ErrServiceFailure, err)
}
