// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "code-modifier"
	authorEmail = "noreply@code-modifier"
)

func signature() *object.Signature {
	return &object.Signature{Name: authorName, Email: authorEmail, When: time.Now()}
}

// HandleDirty commits any uncommitted changes so the run's own commit
// contains only rewritten files. With DirtyCommit off it returns
// ErrDirtyWorkTree instead.
func (r *Repo) HandleDirty() error {
	dirty, err := r.IsDirty()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if !r.cfg.DirtyCommit {
		return ErrDirtyWorkTree
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging dirty files: %w", err)
	}
	if _, err := wt.Commit(dirtyCommitMsg, &gogit.CommitOptions{Author: signature()}); err != nil {
		return fmt.Errorf("committing dirty files: %w", err)
	}
	return nil
}

// Commit stages exactly files and commits them with a message generated from
// instruction. It returns the zero hash without committing when AutoCommit is
// off or files is empty.
func (r *Repo) Commit(files []string, instruction string) (plumbing.Hash, error) {
	if !r.cfg.AutoCommit || len(files) == 0 {
		return plumbing.ZeroHash, nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting worktree: %w", err)
	}

	staged := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := r.relPath(f)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("staging %s: %w", f, err)
		}
		if _, err := wt.Add(rel); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("staging %s: %w", rel, err)
		}
		staged = append(staged, rel)
	}

	msg := GenerateMessage(instruction, staged)
	hash, err := wt.Commit(msg, &gogit.CommitOptions{Author: signature()})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing: %w", err)
	}
	return hash, nil
}

// Undo moves HEAD back one commit with a soft reset, keeping the rewritten
// content in the worktree. HEAD must be a code-modifier commit.
func (r *Repo) Undo() error {
	ok, err := r.IsModifierCommit()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotModifierCommit
	}
	commit, err := r.headCommit()
	if err != nil {
		return err
	}
	if commit.NumParents() == 0 {
		return errors.New("cannot undo: HEAD is the initial commit")
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	err = wt.Reset(&gogit.ResetOptions{Commit: parent.Hash, Mode: gogit.SoftReset})
	if err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}
	return nil
}
