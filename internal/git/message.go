// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSubjectLength = 72

// commitTypes maps instruction keywords to conventional commit types, first
// match wins.
var commitTypes = []struct {
	keywords []string
	prefix   string
}{
	{[]string{"fix", "bug", "repair", "patch", "resolve", "correct"}, "fix"},
	{[]string{"rename", "refactor", "restructure", "reorganize", "clean up", "simplify", "extract", "move"}, "refactor"},
	{[]string{"test", "coverage"}, "test"},
	{[]string{"doc", "docs", "docstring", "comment", "comments", "documentation"}, "docs"},
	{[]string{"style", "format", "lint", "whitespace", "indent"}, "style"},
	{[]string{"perf", "performance", "optimize", "speed"}, "perf"},
	{[]string{"chore", "cleanup", "upgrade", "migrate"}, "chore"},
	{[]string{"add", "create", "implement", "new", "feature", "introduce"}, "feat"},
}

// GenerateMessage builds a conventional commit message from the run's
// instruction and the rewritten files, ending with the code-modifier trailer.
func GenerateMessage(instruction string, files []string) string {
	var b strings.Builder
	b.WriteString(buildSubject(inferCommitType(instruction), instruction))
	if len(files) > 0 {
		b.WriteString("\n\nRewritten files:\n")
		for _, f := range files {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	} else {
		b.WriteString("\n")
	}
	b.WriteString("\n" + Trailer + "\n")
	return b.String()
}

func inferCommitType(instruction string) string {
	lower := strings.ToLower(instruction)
	for _, ct := range commitTypes {
		for _, kw := range ct.keywords {
			if containsWord(lower, kw) {
				return ct.prefix
			}
		}
	}
	return "refactor"
}

// containsWord reports whether keyword occurs in text bounded by non-letters.
// Multi-word keywords match as substrings.
func containsWord(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	for idx := 0; idx < len(text); {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		leftOK := start == 0 || !unicode.IsLetter(before)
		rightOK := end == len(text) || !unicode.IsLetter(after)
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
	return false
}

// buildSubject returns "type: summary" using the first line of the
// instruction, cut to maxSubjectLength.
func buildSubject(commitType, instruction string) string {
	summary := strings.TrimSpace(instruction)
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = strings.TrimSpace(summary[:i])
	}
	summary = strings.TrimRight(summary, ".")
	if summary == "" {
		summary = "apply code-modifier changes"
	}
	r := []rune(summary)
	r[0] = unicode.ToLower(r[0])
	summary = string(r)

	subject := commitType + ": " + summary
	if len(subject) > maxSubjectLength {
		cut := []rune(subject)
		for len(string(cut)) > maxSubjectLength-3 {
			cut = cut[:len(cut)-1]
		}
		subject = string(cut) + "..."
	}
	return subject
}
