// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package modifier is the public interface to code-modifier: point it at a
// directory and an instruction, and every recognized source file is rewritten
// by a completion service.
package modifier

import (
	"context"
	"errors"
	"time"

	internalmodifier "github.com/petar-djukic/code-modifier/internal/modifier"
	"github.com/petar-djukic/code-modifier/pkg/types"
)

// Error types for the Modifier API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidRoot is returned by Run when Root is missing or is not a
	// directory. No file is read or written.
	ErrInvalidRoot = internalmodifier.ErrInvalidRoot
)

// Config configures a Modifier instance.
type Config struct {
	Root string // Project directory to rewrite (required)

	Provider    string        // openai (default), bedrock, gemini
	Model       string        // Provider model ID (default per provider)
	APIKey      string        // OpenAI / Gemini credential
	BaseURL     string        // OpenAI-compatible endpoint override
	Region      string        // AWS region (bedrock)
	Profile     string        // AWS shared config profile (bedrock)
	MaxTokens   int           // Output cap per file (default 2048)
	Temperature float32       // Sampling temperature, 0 to 2 (default 0)
	Timeout     time.Duration // Per-request timeout (default 5m)

	RenameStrategy string              // static (default), llm, none
	Renames        types.RenameMapping // Mapping for the static strategy

	Ignore         []string // Extra gitignore-style rules
	FollowSymlinks bool     // Descend into symlinked directories

	DryRun        bool          // Record diffs instead of writing
	VerifyCmd     string        // Command run after rewriting (empty = skip)
	VerifyTimeout time.Duration // Default 120s
	NoGit         bool          // Disable dirty-save and auto-commit

	RunID  string                 // Optional run identifier for logs
	OnFile func(types.FileResult) // Called after each file
}

// Modifier runs an instruction against a project.
type Modifier interface {
	// Run walks the root, derives renames, rewrites each candidate file
	// through the completion service, and returns the run summary. Per-file
	// failures are reported in the summary, not as an error.
	Run(ctx context.Context, instruction string) (*types.Summary, error)
}
