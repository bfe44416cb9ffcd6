// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package symbols finds class and function names in source text with regular
// expressions. It is a heuristic: indented declarations are missed and
// keywords inside comments or strings produce false positives.
package symbols

import (
	"os"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

// Capture group 1 of every pattern holds the symbol name. Names may use any
// Unicode letter or digit.
var (
	pythonRules = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^class\s+([\p{L}\p{N}_]+)`),
		regexp.MustCompile(`(?m)^def\s+([\p{L}\p{N}_]+)`),
	}
	scriptRules = []*regexp.Regexp{
		regexp.MustCompile(`(?:function|class)\s+([\p{L}\p{N}_]+)`),
	}
)

// rulesFor returns the patterns for language, or nil when extraction is not
// implemented for it.
func rulesFor(language types.Language) []*regexp.Regexp {
	switch language {
	case types.Python:
		return pythonRules
	case types.JavaScript, types.TypeScript:
		return scriptRules
	default:
		return nil
	}
}

// Supported reports whether Extract can find anything for language.
func Supported(language types.Language) bool {
	return rulesFor(language) != nil
}

// Extract returns the sorted, de-duplicated symbol names found in content.
// Languages without rules always yield an empty set.
func Extract(content string, language types.Language) []string {
	rules := rulesFor(language)
	if rules == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, re := range rules {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ExtractFile reads path and extracts its symbols. Read failures and
// non-UTF-8 content are logged and produce an empty set.
func ExtractFile(path string, language types.Language) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Error extracting symbols")
		return nil
	}
	if !utf8.Valid(data) {
		log.Warn().Str("file", path).Msg("Error extracting symbols: content is not valid UTF-8")
		return nil
	}
	return Extract(string(data), language)
}
