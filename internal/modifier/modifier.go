// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package modifier runs the rewrite pipeline: walk the root, derive renames,
// then send each file to the completion service and write the answer back.
package modifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	gitpkg "github.com/petar-djukic/code-modifier/internal/git"
	"github.com/petar-djukic/code-modifier/internal/lang"
	"github.com/petar-djukic/code-modifier/internal/llm"
	"github.com/petar-djukic/code-modifier/internal/renames"
	"github.com/petar-djukic/code-modifier/internal/rewriter"
	"github.com/petar-djukic/code-modifier/internal/syntax"
	"github.com/petar-djukic/code-modifier/internal/verify"
	"github.com/petar-djukic/code-modifier/internal/walker"
	"github.com/petar-djukic/code-modifier/pkg/types"
)

// ErrInvalidRoot is returned when the root is missing or is not a directory.
// Nothing is read or written in that case.
var ErrInvalidRoot = errors.New("invalid root")

const (
	reasonCancelled = "cancelled"
	reasonNotUTF8   = "content is not valid UTF-8"
)

// Deps holds injected dependencies for the runner.
type Deps struct {
	Completer     llm.Completer
	Deriver       renames.Deriver // nil uses the default static mapping
	Root          string
	Walk          walker.Options
	DryRun        bool
	VerifyCmd     string
	VerifyTimeout time.Duration
	NoGit         bool
	RunID         string // Generated when empty
	// OnFile is called after each file with its result, in run order.
	OnFile func(types.FileResult)
}

// Runner executes runs against one root.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	if deps.Deriver == nil {
		deps.Deriver = renames.Static{Mapping: renames.DefaultMapping}
	}
	return &Runner{deps: deps}
}

// Run rewrites every candidate file under the root according to
// instruction. Per-file problems end up in the summary; only an invalid root,
// a missing completion client, a git failure before any file is touched, or
// a cancelled walk return an error.
func (r *Runner) Run(ctx context.Context, instruction string) (*types.Summary, error) {
	runID := r.deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := log.With().Str("run_id", runID).Logger()

	summary := &types.Summary{
		RunID:       runID,
		Root:        r.deps.Root,
		Instruction: instruction,
		Renames:     types.RenameMapping{},
	}

	info, err := os.Stat(r.deps.Root)
	if err != nil {
		return summary, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, r.deps.Root, err)
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, r.deps.Root)
	}
	if r.deps.Completer == nil {
		return summary, errors.New("no completion client configured")
	}

	repo, err := r.prepareGit(logger)
	if err != nil {
		return summary, err
	}

	walked, err := walker.Walk(ctx, r.deps.Root, r.deps.Walk)
	if err != nil {
		if errors.Is(err, walker.ErrNotDirectory) {
			return summary, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
		}
		return summary, fmt.Errorf("walking %s: %w", r.deps.Root, err)
	}
	summary.SymbolCount = walked.Symbols.Len()
	logger.Info().
		Int("files", len(walked.Files)).
		Int("symbols", summary.SymbolCount).
		Msg("Walk complete")

	mapping, err := r.deps.Deriver.Derive(ctx, instruction, walked.Symbols)
	if err != nil {
		logger.Warn().Err(err).Msg("Rename derivation failed, continuing without renames")
		mapping = types.RenameMapping{}
	}
	if mapping == nil {
		mapping = types.RenameMapping{}
	}
	summary.Renames = mapping

	prompts := make(map[types.Language]string)
	for i, path := range walked.Files {
		if ctx.Err() != nil {
			for _, rest := range walked.Files[i:] {
				language, _ := lang.ForPath(rest)
				r.record(logger, summary, types.FileResult{
					Path:     rest,
					Language: language,
					Status:   types.StatusSkipped,
					Reason:   reasonCancelled,
				})
			}
			break
		}
		r.record(logger, summary, r.processFile(ctx, path, instruction, mapping, prompts))
	}

	if !r.deps.DryRun && ctx.Err() == nil {
		if res := verify.Run(ctx, verify.Config{
			Dir:     r.deps.Root,
			Command: r.deps.VerifyCmd,
			Timeout: r.deps.VerifyTimeout,
		}); res != nil {
			summary.Verify = res.Outcome()
			level := zerolog.InfoLevel
			if !res.OK {
				level = zerolog.WarnLevel
			}
			logger.WithLevel(level).
				Str("command", res.Command).
				Bool("ok", res.OK).
				Int("diagnostics", len(res.Diagnostics)).
				Msg("Verification finished")
		}
	}

	summary.TokensUsed = r.deps.Completer.Usage()
	summary.Committed = r.commit(ctx, logger, repo, summary)
	return summary, nil
}

// prepareGit opens the repository around the root and saves dirty work. It
// returns nil when git is disabled, the run is dry, or there is no
// repository.
func (r *Runner) prepareGit(logger zerolog.Logger) (*gitpkg.Repo, error) {
	if r.deps.NoGit || r.deps.DryRun {
		return nil, nil
	}
	repo, err := gitpkg.Open(gitpkg.Config{
		Root:        r.deps.Root,
		AutoCommit:  true,
		DirtyCommit: true,
	})
	if err != nil {
		logger.Debug().Err(err).Msg("Git integration disabled")
		return nil, nil
	}
	logger.Debug().Str("worktree", repo.WorkDir()).Msg("Git integration enabled")
	if err := repo.HandleDirty(); err != nil {
		return nil, fmt.Errorf("handling dirty files: %w", err)
	}
	return repo, nil
}

// commit records the rewritten files. Cancelled runs are left uncommitted.
func (r *Runner) commit(ctx context.Context, logger zerolog.Logger, repo *gitpkg.Repo, summary *types.Summary) bool {
	if repo == nil || r.deps.DryRun {
		return false
	}
	if ctx.Err() != nil {
		logger.Warn().Msg("Run cancelled, leaving changes uncommitted")
		return false
	}
	if summary.Verify != nil && !summary.Verify.OK {
		logger.Warn().Msg("Verification failed, leaving changes uncommitted")
		return false
	}
	files := summary.Paths(types.StatusRewritten)
	if len(files) == 0 {
		return false
	}
	hash, err := repo.Commit(files, summary.Instruction)
	if err != nil {
		logger.Warn().Err(err).Msg("Auto-commit failed")
		return false
	}
	logger.Info().Str("commit", hash.String()).Int("files", len(files)).Msg("Committed rewritten files")
	return true
}

// processFile handles one file. The file is only touched by the final write.
func (r *Runner) processFile(ctx context.Context, path, instruction string, mapping types.RenameMapping, prompts map[types.Language]string) types.FileResult {
	language, _ := lang.ForPath(path)
	res := types.FileResult{Path: path, Language: language}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Status = types.StatusFailed
		res.Reason = err.Error()
		return res
	}
	if !utf8.Valid(content) {
		res.Status = types.StatusFailed
		res.Reason = reasonNotUTF8
		return res
	}

	system, ok := prompts[language]
	if !ok {
		system, err = llm.RenderSystemPrompt(llm.TemplateData{Language: language})
		if err != nil {
			res.Status = types.StatusFailed
			res.Reason = err.Error()
			return res
		}
		prompts[language] = system
	}

	resp, err := r.deps.Completer.Complete(ctx, llm.Request{
		System: system,
		Prompt: llm.BuildPrompt(instruction, language, string(content), mapping),
	})
	if err != nil {
		res.Status = types.StatusSkipped
		res.Reason = err.Error()
		if ctx.Err() != nil {
			res.Reason = reasonCancelled
		}
		return res
	}
	res.Usage = resp.Usage
	res.Warnings = checkResponse(ctx, language, resp.Text)

	if r.deps.DryRun {
		res.Status = types.StatusPlanned
		res.Diff = rewriter.Diff(path, string(content), resp.Text)
		return res
	}

	if err := rewriter.Write(path, resp.Text); err != nil {
		res.Status = types.StatusFailed
		res.Reason = err.Error()
		return res
	}
	res.Status = types.StatusRewritten
	return res
}

// checkResponse returns warnings about a response. It never changes what is
// written.
func checkResponse(ctx context.Context, language types.Language, text string) []string {
	var warnings []string
	if syntax.Fenced(text) {
		warnings = append(warnings, "response is wrapped in a markdown code fence")
	}
	if !syntax.Supported(language) {
		return warnings
	}
	check, err := syntax.Check(ctx, language, text)
	switch {
	case err != nil:
		log.Debug().Err(err).Str("lang", language.String()).Msg("Syntax check unavailable")
	case check.HasErrors:
		warnings = append(warnings, fmt.Sprintf("response does not parse as %s (first error at line %d)", language, check.ErrorLine))
	}
	return warnings
}

func (r *Runner) record(logger zerolog.Logger, summary *types.Summary, res types.FileResult) {
	summary.Files = append(summary.Files, res)

	var ev *zerolog.Event
	switch res.Status {
	case types.StatusFailed:
		ev = logger.Error()
	case types.StatusSkipped:
		ev = logger.Warn()
	default:
		ev = logger.Info()
	}
	ev = ev.Str("file", res.Path).Str("lang", res.Language.String()).Str("status", string(res.Status))
	if res.Reason != "" {
		ev = ev.Str("reason", res.Reason)
	}
	if len(res.Warnings) > 0 {
		ev = ev.Strs("warnings", res.Warnings)
	}
	ev.Msg("File processed")

	if r.deps.OnFile != nil {
		r.deps.OnFile(res)
	}
}
