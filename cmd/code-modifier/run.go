// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/code-modifier/internal/git"
	"github.com/petar-djukic/code-modifier/internal/llm"
	"github.com/petar-djukic/code-modifier/internal/renames"
	"github.com/petar-djukic/code-modifier/pkg/modifier"
	"github.com/petar-djukic/code-modifier/pkg/types"
)

// providerKeyEnv lists the provider-specific credential variables consulted
// when CODE_MODIFIER_API_KEY is unset, in order.
var providerKeyEnv = map[string][]string{
	llm.ProviderOpenAI: {"OPENAI_API_KEY"},
	llm.ProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// runModifier executes one run and prints per-file lines and a summary.
func runModifier(cmd *cobra.Command, v *viper.Viper, root, instruction string) error {
	out := cmd.OutOrStdout()
	asJSON := v.GetBool("json")

	mapping, err := parseRenameList(v.GetStringSlice("renames"))
	if err != nil {
		return err
	}

	provider := strings.ToLower(v.GetString("provider"))
	cfg := modifier.Config{
		Root:           root,
		Provider:       provider,
		Model:          v.GetString("model"),
		APIKey:         resolveAPIKey(v, provider),
		BaseURL:        v.GetString("base-url"),
		Region:         v.GetString("region"),
		Profile:        v.GetString("profile"),
		MaxTokens:      v.GetInt("max-tokens"),
		Temperature:    float32(v.GetFloat64("temperature")),
		Timeout:        v.GetDuration("timeout"),
		RenameStrategy: v.GetString("rename-strategy"),
		Renames:        mapping,
		Ignore:         v.GetStringSlice("ignore"),
		FollowSymlinks: v.GetBool("follow-symlinks"),
		DryRun:         v.GetBool("dry-run"),
		VerifyCmd:      v.GetString("verify-cmd"),
		VerifyTimeout:  v.GetDuration("verify-timeout"),
		NoGit:          v.GetBool("no-git"),
		RunID:          uuid.NewString(),
	}
	if !asJSON {
		cfg.OnFile = func(r types.FileResult) { printFileResult(out, r) }
	}

	m, err := modifier.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	summary, err := m.Run(cmd.Context(), instruction)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	printSummary(out, summary)
	return nil
}

// resolveAPIKey prefers CODE_MODIFIER_API_KEY (or api-key in the config
// file), then the provider's own variables.
func resolveAPIKey(v *viper.Viper, provider string) string {
	if key := v.GetString("api-key"); key != "" {
		return key
	}
	if provider == "" {
		provider = llm.ProviderOpenAI
	}
	for _, name := range providerKeyEnv[provider] {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// parseRenameList turns "Old->New" entries into a mapping.
func parseRenameList(entries []string) (types.RenameMapping, error) {
	mapping := types.RenameMapping{}
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		pair := renames.ParsePairs(e)
		if len(pair) != 1 {
			return nil, fmt.Errorf("invalid rename %q, want OLD->NEW", e)
		}
		for old, repl := range pair {
			mapping[old] = repl
		}
	}
	return mapping, nil
}

func printFileResult(w io.Writer, r types.FileResult) {
	switch r.Status {
	case types.StatusRewritten:
		fmt.Fprintf(w, "Processed: %s\n", r.Path)
	case types.StatusPlanned:
		fmt.Fprintf(w, "Planned: %s\n", r.Path)
		if r.Diff != "" {
			fmt.Fprint(w, r.Diff)
			if !strings.HasSuffix(r.Diff, "\n") {
				fmt.Fprintln(w)
			}
		}
	case types.StatusSkipped:
		fmt.Fprintf(w, "Skipped %s: %s\n", r.Path, r.Reason)
	case types.StatusFailed:
		fmt.Fprintf(w, "Error processing %s: %s\n", r.Path, r.Reason)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

func printSummary(w io.Writer, s *types.Summary) {
	fmt.Fprintf(w, "\n%d files: %d rewritten, %d planned, %d skipped, %d failed (%d tokens)\n",
		len(s.Files),
		s.Count(types.StatusRewritten),
		s.Count(types.StatusPlanned),
		s.Count(types.StatusSkipped),
		s.Count(types.StatusFailed),
		s.TokensUsed.Total())
	if s.Verify != nil {
		state := "passed"
		if !s.Verify.OK {
			state = "failed"
		}
		fmt.Fprintf(w, "Verify %q %s\n", s.Verify.Command, state)
		if !s.Verify.OK && s.Verify.Output != "" {
			fmt.Fprintln(w, strings.TrimRight(s.Verify.Output, "\n"))
		}
	}
	if s.Committed {
		fmt.Fprintln(w, "Committed rewritten files; run 'code-modifier undo' to revert.")
	}
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [path]",
		Short: "Revert the last code-modifier commit",
		Long:  "Undo performs a soft reset of HEAD if it was committed by code-modifier; the rewritten content stays in the worktree.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			repo, err := gitpkg.Open(gitpkg.Config{Root: root})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}
			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Reverted last code-modifier commit.")
			return nil
		},
	}
}
