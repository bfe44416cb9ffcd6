// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lang maps file extensions to language tags.
package lang

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

// extensions maps lowercase, dot-prefixed extensions to language tags.
var extensions = map[string]types.Language{
	".py":    types.Python,
	".js":    types.JavaScript,
	".ts":    types.TypeScript,
	".java":  types.Java,
	".cs":    types.CSharp,
	".cpp":   types.CPP,
	".c":     types.C,
	".rb":    types.Ruby,
	".php":   types.PHP,
	".swift": types.Swift,
	".go":    types.Go,
	".kt":    types.Kotlin,
	".rs":    types.Rust,
	".dart":  types.Dart,
}

// LanguageFor returns the language registered for ext. The lookup is
// case-insensitive; ext must include the leading dot.
func LanguageFor(ext string) (types.Language, bool) {
	l, ok := extensions[strings.ToLower(ext)]
	return l, ok
}

// ForPath returns the language for the extension of path.
func ForPath(path string) (types.Language, bool) {
	return LanguageFor(filepath.Ext(path))
}

// Extensions returns the registered extensions in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
