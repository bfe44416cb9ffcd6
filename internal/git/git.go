// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git wraps the repository around a modified tree: it saves dirty
// work before a run, commits the rewritten files afterwards, and can undo
// that commit.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// Trailer marks commits created by code-modifier. Undo refuses any HEAD
	// without it.
	Trailer        = "Modified-By: code-modifier"
	dirtyCommitMsg = "chore: save uncommitted changes before code-modifier run"
)

// ErrNotModifierCommit is returned when undo targets a commit code-modifier did not make.
var ErrNotModifierCommit = errors.New("not a code-modifier commit")

// ErrDirtyWorkTree is returned when uncommitted changes exist and DirtyCommit is false.
var ErrDirtyWorkTree = errors.New("uncommitted changes exist")

// ErrNoGit is returned when no repository contains the root.
var ErrNoGit = errors.New("not a git repository")

// Config configures git integration behavior.
type Config struct {
	Root        string // Directory being modified; the repository may be an ancestor
	AutoCommit  bool   // Commit rewritten files after the run
	DirtyCommit bool   // Commit dirty files before the run instead of failing
}

// Repo is the repository containing Config.Root.
type Repo struct {
	repo    *gogit.Repository
	workDir string
	cfg     Config
}

// Open finds the repository containing cfg.Root, searching parent
// directories. Returns ErrNoGit if there is none.
func Open(cfg Config) (*Repo, error) {
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cfg.Root, err)
	}
	r, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, workDir: wt.Filesystem.Root(), cfg: cfg}, nil
}

// WorkDir returns the top of the worktree.
func (r *Repo) WorkDir() string {
	return r.workDir
}

// IsDirty reports whether the worktree has staged, unstaged or untracked
// changes.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}
	return !status.IsClean(), nil
}

// IsModifierCommit reports whether HEAD carries the code-modifier trailer.
func (r *Repo) IsModifierCommit() (bool, error) {
	commit, err := r.headCommit()
	if err != nil {
		return false, err
	}
	return hasTrailer(commit.Message), nil
}

func hasTrailer(msg string) bool {
	for _, line := range strings.Split(msg, "\n") {
		if strings.TrimSpace(line) == Trailer {
			return true
		}
	}
	return false
}

func (r *Repo) headCommit() (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}
	return commit, nil
}

// relPath converts a walker path to the slash-separated path go-git stages.
func (r *Repo) relPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.workDir, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the worktree %s", path, r.workDir)
	}
	return filepath.ToSlash(rel), nil
}

// lastCommitMessage returns the message of the HEAD commit.
func (r *Repo) lastCommitMessage() (string, error) {
	commit, err := r.headCommit()
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

// commitCount returns the total number of commits reachable from HEAD.
func (r *Repo) commitCount() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	err = iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	return count, err
}
