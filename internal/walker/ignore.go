// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package walker

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFile is read from the walk root when present; one rule per line.
const IgnoreFile = ".codemodifierignore"

// DefaultIgnore lists dependency and build directories skipped by default.
// User rules can re-include them with "!name/".
var DefaultIgnore = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
	"__pycache__/",
	".venv/",
}

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// matcher applies gitignore-like rules; the last matching rule wins.
type matcher struct {
	rules []rule
}

func newMatcher(lines []string) *matcher {
	m := &matcher{}
	for _, line := range lines {
		if r, ok := parseRule(line); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// ignored reports whether relPath (slash-separated, relative to the root)
// is excluded.
func (m *matcher) ignored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if strings.HasPrefix(line, "!") {
		r.negated = true
		line = line[1:]
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if line == "" {
		return rule{}, false
	}
	r.pattern = line
	return r, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	if r.anchored || strings.Contains(r.pattern, "/") {
		return glob(r.pattern, relPath)
	}
	return glob(r.pattern, path.Base(relPath))
}

// glob wraps path.Match; malformed patterns never match.
func glob(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// readIgnoreFile returns the rules in root/IgnoreFile, or nil if it is absent.
func readIgnoreFile(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
