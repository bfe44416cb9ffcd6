// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var systemTemplate = template.Must(template.ParseFS(templateFS, "templates/system.tmpl"))

// TemplateData holds the values injected into the system prompt template.
type TemplateData struct {
	Language types.Language
}

// RenderSystemPrompt renders the system instruction for a file.
func RenderSystemPrompt(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing system template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// BuildPrompt combines, in order: the user's instruction, the rename pairs
// as "old -> new" lines, a language-tagged instruction, and the file content
// verbatim. Nothing is escaped or truncated.
func BuildPrompt(userPrompt string, language types.Language, content string, renames types.RenameMapping) string {
	var buf strings.Builder
	buf.WriteString(userPrompt)
	buf.WriteString("\n\nHere are the symbol changes to apply throughout the codebase:\n")

	pairs := renames.Pairs()
	for i, p := range pairs {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "%s -> %s", p.Old, p.New)
	}

	fmt.Fprintf(&buf, "\n\nModify the following %s code accordingly:\n", language)
	buf.WriteString(content)
	return buf.String()
}
