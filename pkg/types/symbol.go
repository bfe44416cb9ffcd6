// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across code-modifier packages.
package types

import (
	"encoding/json"
	"sort"
)

// Language is the tag a file extension resolves to, e.g. "python".
type Language string

// Language tags known to the extension registry.
const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	CSharp     Language = "csharp"
	CPP        Language = "cpp"
	C          Language = "c"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	Swift      Language = "swift"
	Go         Language = "go"
	Kotlin     Language = "kotlin"
	Rust       Language = "rust"
	Dart       Language = "dart"
)

// String returns the tag as used in prompts.
func (l Language) String() string {
	return string(l)
}

// SymbolTable maps a symbol name to the set of files that declare or mention
// it. The walker builds it once; everything after that only reads it.
type SymbolTable struct {
	entries map[string]map[string]struct{}
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]map[string]struct{})}
}

// Add records that symbol was found in path.
func (t *SymbolTable) Add(symbol, path string) {
	files, ok := t.entries[symbol]
	if !ok {
		files = make(map[string]struct{})
		t.entries[symbol] = files
	}
	files[path] = struct{}{}
}

// Has reports whether the symbol was seen in any file.
func (t *SymbolTable) Has(symbol string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[symbol]
	return ok
}

// Files returns the sorted paths recorded for symbol.
func (t *SymbolTable) Files(symbol string) []string {
	if t == nil {
		return nil
	}
	files := t.entries[symbol]
	out := make([]string, 0, len(files))
	for f := range files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Symbols returns all symbol names in sorted order.
func (t *SymbolTable) Symbols() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.entries))
	for s := range t.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct symbols.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// MarshalJSON renders the table as {"symbol": ["file", ...]}.
func (t *SymbolTable) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, t.Len())
	for _, s := range t.Symbols() {
		out[s] = t.Files(s)
	}
	return json.Marshal(out)
}
