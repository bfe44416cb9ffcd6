// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "sort"

// RenameMapping pairs an old symbol name with its new name. It is context for
// the completion service only; nothing applies it to source mechanically.
type RenameMapping map[string]string

// RenamePair is one old -> new entry.
type RenamePair struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Pairs returns the mapping sorted by old name so prompts are stable.
func (m RenameMapping) Pairs() []RenamePair {
	pairs := make([]RenamePair, 0, len(m))
	for old, repl := range m {
		pairs = append(pairs, RenamePair{Old: old, New: repl})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Old < pairs[j].Old })
	return pairs
}
