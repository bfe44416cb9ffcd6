// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package renames decides which old -> new symbol pairs accompany the
// instruction in every prompt.
package renames

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/petar-djukic/code-modifier/internal/llm"
	"github.com/petar-djukic/code-modifier/pkg/types"
)

const (
	StrategyStatic     = "static"
	StrategyCompletion = "llm"
	StrategyNone       = "none"
)

// DefaultMapping is used by the static strategy when no mapping is configured.
var DefaultMapping = types.RenameMapping{
	"OldClass":     "NewClass",
	"old_function": "new_function",
}

// Deriver produces the rename mapping for a run.
type Deriver interface {
	Derive(ctx context.Context, instruction string, table *types.SymbolTable) (types.RenameMapping, error)
}

// New returns the deriver for strategy. static may be nil, in which case the
// static strategy uses DefaultMapping. The completion strategy needs c.
func New(strategy string, c llm.Completer, static types.RenameMapping) (Deriver, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyStatic:
		if len(static) == 0 {
			static = DefaultMapping
		}
		return Static{Mapping: static}, nil
	case StrategyCompletion:
		if c == nil {
			return nil, fmt.Errorf("rename strategy %q needs a completion client", StrategyCompletion)
		}
		return &Completion{Completer: c}, nil
	case StrategyNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown rename strategy %q (supported: %s, %s, %s)",
			strategy, StrategyStatic, StrategyCompletion, StrategyNone)
	}
}

// Static returns the same mapping regardless of the instruction or the
// symbols found.
type Static struct {
	Mapping types.RenameMapping
}

func (s Static) Derive(context.Context, string, *types.SymbolTable) (types.RenameMapping, error) {
	out := make(types.RenameMapping, len(s.Mapping))
	for k, v := range s.Mapping {
		out[k] = v
	}
	return out, nil
}

// None always returns an empty mapping.
type None struct{}

func (None) Derive(context.Context, string, *types.SymbolTable) (types.RenameMapping, error) {
	return types.RenameMapping{}, nil
}

// Completion asks the completion service which discovered symbols the
// instruction renames. Pairs naming unknown symbols are dropped.
type Completion struct {
	Completer  llm.Completer
	MaxSymbols int // Cap on symbols listed in the request (default 500)
}

const (
	defaultMaxSymbols = 500
	deriveSystem      = "You are an expert software developer who plans codebase-wide renames."
)

func (c *Completion) Derive(ctx context.Context, instruction string, table *types.SymbolTable) (types.RenameMapping, error) {
	if table.Len() == 0 {
		return types.RenameMapping{}, nil
	}

	resp, err := c.Completer.Complete(ctx, llm.Request{
		System: deriveSystem,
		Prompt: c.prompt(instruction, table),
	})
	if err != nil {
		return nil, fmt.Errorf("deriving renames: %w", err)
	}

	mapping := make(types.RenameMapping)
	for old, repl := range ParsePairs(resp.Text) {
		if !table.Has(old) {
			log.Debug().Str("symbol", old).Msg("Dropping rename for unknown symbol")
			continue
		}
		mapping[old] = repl
	}
	return mapping, nil
}

func (c *Completion) prompt(instruction string, table *types.SymbolTable) string {
	limit := c.MaxSymbols
	if limit <= 0 {
		limit = defaultMaxSymbols
	}

	var buf strings.Builder
	buf.WriteString(instruction)
	buf.WriteString("\n\nThese symbols exist in the codebase:\n")
	for i, sym := range table.Symbols() {
		if i == limit {
			fmt.Fprintf(&buf, "... and %d more\n", table.Len()-limit)
			break
		}
		buf.WriteString(sym)
		buf.WriteString("\n")
	}
	buf.WriteString("\nList every symbol the instruction renames, one per line, formatted as `old -> new`. ")
	buf.WriteString("Reply with NONE if nothing is renamed.")
	return buf.String()
}

var pairLine = regexp.MustCompile("^(?:\\d+[.)])?[\\s*`-]*(\\w+)`?\\s*(?:->|=>|→)\\s*`?(\\w+)`?[\\s.,;]*$")

// ParsePairs reads "old -> new" lines, tolerating list markers and
// backticks. Identity pairs and other lines are ignored.
func ParsePairs(text string) types.RenameMapping {
	out := make(types.RenameMapping)
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		m := pairLine.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil || m[1] == m[2] {
			continue
		}
		out[m[1]] = m[2]
	}
	return out
}
