// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// FileStatus is the outcome of processing one file.
type FileStatus string

const (
	StatusRewritten FileStatus = "rewritten" // Response written over the file
	StatusPlanned   FileStatus = "planned"   // Dry run; diff recorded, file untouched
	StatusSkipped   FileStatus = "skipped"   // Completion failed or run cancelled; file untouched
	StatusFailed    FileStatus = "failed"    // Read or write error
)

// FileResult records what happened to a single file.
type FileResult struct {
	Path     string     `json:"path"`
	Language Language   `json:"language"`
	Status   FileStatus `json:"status"`
	Reason   string     `json:"reason,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Diff     string     `json:"diff,omitempty"`
	Usage    TokenUsage `json:"usage"`
}

// VerifyOutcome is the result of the post-run verification command.
type VerifyOutcome struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Output  string `json:"output,omitempty"`
}

// Summary collects the results of one run.
type Summary struct {
	RunID       string         `json:"run_id"`
	Root        string         `json:"root"`
	Instruction string         `json:"instruction"`
	Renames     RenameMapping  `json:"renames"`
	SymbolCount int            `json:"symbol_count"`
	Files       []FileResult   `json:"files"`
	TokensUsed  TokenUsage     `json:"tokens_used"`
	Verify      *VerifyOutcome `json:"verify,omitempty"`
	Committed   bool           `json:"committed"`
}

// Count returns how many files ended with status.
func (s *Summary) Count(status FileStatus) int {
	n := 0
	for _, f := range s.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Paths returns the paths of files that ended with status, in run order.
func (s *Summary) Paths(status FileStatus) []string {
	var out []string
	for _, f := range s.Files {
		if f.Status == status {
			out = append(out, f.Path)
		}
	}
	return out
}
