// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package walker enumerates source files under a project root and builds the
// symbol table for them.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/petar-djukic/code-modifier/internal/lang"
	"github.com/petar-djukic/code-modifier/internal/symbols"
	"github.com/petar-djukic/code-modifier/pkg/types"
)

// ErrNotDirectory is returned when the walk root is missing or is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options controls a walk.
type Options struct {
	Ignore         []string // Extra gitignore-style rules, applied after the defaults
	NoDefaults     bool     // Drop DefaultIgnore
	FollowSymlinks bool     // Descend into symlinked directories (cycles are visited once)
}

// Result holds the walk output. Both fields are read-only once returned.
type Result struct {
	Symbols *types.SymbolTable
	Files   []string // Candidate files in traversal order
	Skipped int      // Files with unregistered extensions
}

// Walk visits every file under root with an explicit stack. Within a
// directory, files are handled in lexical order before its subdirectories.
// Only files with a registered extension are listed; their symbols are merged
// into the table. Per-file and per-directory problems are logged, never
// returned.
func Walk(ctx context.Context, root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var rules []string
	if !opts.NoDefaults {
		rules = append(rules, DefaultIgnore...)
	}
	rules = append(rules, opts.Ignore...)
	fileRules, err := readIgnoreFile(root)
	if err != nil {
		log.Warn().Err(err).Str("file", filepath.Join(root, IgnoreFile)).Msg("Cannot read ignore file")
	}
	rules = append(rules, fileRules...)
	m := newMatcher(rules)

	result := &Result{Symbols: types.NewSymbolTable()}
	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visited[real] = true
	}

	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Cannot read directory")
			continue
		}

		var subdirs []string
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			rel, _ := filepath.Rel(root, path)

			isDir, ok := classify(path, entry, opts.FollowSymlinks)
			if !ok {
				continue
			}

			if m.ignored(rel, isDir) {
				log.Debug().Str("path", rel).Msg("Ignored")
				continue
			}

			if isDir {
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					log.Warn().Err(err).Str("dir", path).Msg("Cannot resolve directory")
					continue
				}
				if visited[real] {
					log.Debug().Str("dir", path).Msg("Directory already visited")
					continue
				}
				visited[real] = true
				subdirs = append(subdirs, path)
				continue
			}

			language, ok := lang.ForPath(path)
			if !ok {
				result.Skipped++
				continue
			}
			if symbols.Supported(language) {
				for _, sym := range symbols.ExtractFile(path, language) {
					result.Symbols.Add(sym, path)
				}
			}
			result.Files = append(result.Files, path)
		}

		// Push in reverse so the lexically first subdirectory is popped first.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	log.Debug().
		Str("root", root).
		Int("files", len(result.Files)).
		Int("symbols", result.Symbols.Len()).
		Int("skipped", result.Skipped).
		Msg("Walk complete")

	return result, nil
}

// classify reports whether entry is a directory, resolving symlinks. ok is
// false for entries that are neither regular files nor directories, and for
// symlinked directories when links are not followed.
func classify(path string, entry fs.DirEntry, follow bool) (isDir, ok bool) {
	mode := entry.Type()
	if mode&fs.ModeSymlink == 0 {
		if entry.IsDir() {
			return true, true
		}
		return false, mode.IsRegular()
	}

	target, err := os.Stat(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Dangling symlink")
		return false, false
	}
	if target.IsDir() {
		return true, follow
	}
	return false, target.Mode().IsRegular()
}
