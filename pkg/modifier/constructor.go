// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package modifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/petar-djukic/code-modifier/internal/llm"
	internalmodifier "github.com/petar-djukic/code-modifier/internal/modifier"
	"github.com/petar-djukic/code-modifier/internal/renames"
	"github.com/petar-djukic/code-modifier/internal/walker"
)

const maxTemperature = 2

// New validates the config, creates the completion client and the rename
// deriver, and returns a ready Modifier. The root is checked by Run.
func New(ctx context.Context, cfg Config) (Modifier, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	completer, err := llm.NewCompleter(ctx, llm.ClientConfig{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		Profile:     cfg.Profile,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	deriver, err := renames.New(cfg.RenameStrategy, completer, cfg.Renames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return internalmodifier.NewRunner(internalmodifier.Deps{
		Completer: completer,
		Deriver:   deriver,
		Root:      cfg.Root,
		Walk: walker.Options{
			Ignore:         cfg.Ignore,
			FollowSymlinks: cfg.FollowSymlinks,
		},
		DryRun:        cfg.DryRun,
		VerifyCmd:     cfg.VerifyCmd,
		VerifyTimeout: cfg.VerifyTimeout,
		NoGit:         cfg.NoGit,
		RunID:         cfg.RunID,
		OnFile:        cfg.OnFile,
	}), nil
}

// validateConfig checks the fields New cannot default.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Root) == "" {
		return fmt.Errorf("Root is required")
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("MaxTokens must not be negative, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > maxTemperature {
		return fmt.Errorf("Temperature must be between 0 and %d, got %g", maxTemperature, cfg.Temperature)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("Timeout must not be negative, got %s", cfg.Timeout)
	}
	if cfg.VerifyTimeout < 0 {
		return fmt.Errorf("VerifyTimeout must not be negative, got %s", cfg.VerifyTimeout)
	}
	for old, repl := range cfg.Renames {
		if strings.TrimSpace(old) == "" || strings.TrimSpace(repl) == "" {
			return fmt.Errorf("Renames entries need both names, got %q -> %q", old, repl)
		}
	}
	return nil
}
