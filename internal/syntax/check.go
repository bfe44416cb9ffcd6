// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package syntax parses completion responses with tree-sitter to flag output
// that is not valid source for the file's language.
package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

// grammars maps a language tag to its tree-sitter grammar. Dart has none.
var grammars = map[types.Language]func() *sitter.Language{
	types.Python:     python.GetLanguage,
	types.JavaScript: javascript.GetLanguage,
	types.TypeScript: typescript.GetLanguage,
	types.Java:       java.GetLanguage,
	types.CSharp:     csharp.GetLanguage,
	types.CPP:        cpp.GetLanguage,
	types.C:          c.GetLanguage,
	types.Ruby:       ruby.GetLanguage,
	types.PHP:        php.GetLanguage,
	types.Swift:      swift.GetLanguage,
	types.Go:         golang.GetLanguage,
	types.Kotlin:     kotlin.GetLanguage,
	types.Rust:       rust.GetLanguage,
}

// Result is the outcome of parsing one response.
type Result struct {
	// Supported is false when no grammar exists for the language; the other
	// fields are then zero.
	Supported bool
	HasErrors bool
	// ErrorLine is the 1-based line of the first error or missing node.
	ErrorLine int
}

// Supported reports whether a grammar exists for language.
func Supported(language types.Language) bool {
	_, ok := grammars[language]
	return ok
}

// Check parses content as language and reports syntax errors.
func Check(ctx context.Context, language types.Language, content string) (Result, error) {
	grammar, ok := grammars[language]
	if !ok {
		return Result{}, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar())

	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", language, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	res := Result{Supported: true, HasErrors: root.HasError()}
	if res.HasErrors {
		if n := firstError(root); n != nil {
			res.ErrorLine = int(n.StartPoint().Row) + 1
		}
	}
	return res, nil
}

// firstError returns the first error or missing node in document order.
func firstError(root *sitter.Node) *sitter.Node {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
	return nil
}

// Fenced reports whether content is wrapped in a markdown code fence, which
// models sometimes add despite being asked for the bare file.
func Fenced(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "```")
}
