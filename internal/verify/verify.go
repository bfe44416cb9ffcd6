// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package verify runs a user-supplied check command (a build, a linter, a
// test suite) after files have been rewritten.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/petar-djukic/code-modifier/pkg/types"
)

const defaultTimeout = 120 * time.Second

// Config configures a verification run.
type Config struct {
	Dir     string        // Working directory (the modified root)
	Command string        // Command line, split on whitespace; empty skips
	Timeout time.Duration // Default 120s
}

// Diagnostic is one "file:line[:col]: message" line found in the output.
type Diagnostic struct {
	FilePath string
	Line     int
	Column   int // 0 if not reported
	Message  string
}

func (d Diagnostic) String() string {
	if d.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.FilePath, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s", d.FilePath, d.Line, d.Message)
}

// Result holds the outcome of the command.
type Result struct {
	Command     string
	OK          bool
	Output      string // Combined stdout and stderr
	TimedOut    bool
	Diagnostics []Diagnostic
}

// Outcome converts the result for the run summary.
func (r *Result) Outcome() *types.VerifyOutcome {
	if r == nil {
		return nil
	}
	return &types.VerifyOutcome{Command: r.Command, OK: r.OK, Output: r.Output}
}

// Run executes cfg.Command in cfg.Dir. It returns nil when no command is
// configured. A command that cannot be started counts as a failure.
func Run(ctx context.Context, cfg Config) *Result {
	parts := strings.Fields(cfg.Command)
	if len(parts) == 0 {
		return nil
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	out, err := runCommand(ctx, cfg.Dir, timeout, parts[0], parts[1:]...)
	res := &Result{
		Command: cfg.Command,
		OK:      err == nil,
		Output:  out,
	}
	if errors.Is(err, context.DeadlineExceeded) {
		res.TimedOut = true
	}
	if err != nil && out == "" {
		res.Output = err.Error()
	}
	if !res.OK {
		res.Diagnostics = parseDiagnostics(res.Output)
	}
	return res
}

// runCommand executes a command with a timeout and captures combined output.
func runCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if cmdCtx.Err() != nil {
		return buf.String(), cmdCtx.Err()
	}
	return buf.String(), err
}

// diagRegex matches compiler-style lines such as
// src/a.py:10:5: error message
// b.js:3: error message
var diagRegex = regexp.MustCompile(`^(\S+?\.\w+):(\d+)(?::(\d+))?:\s*(.+)$`)

func parseDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := diagRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum, _ := strconv.Atoi(m[2])
		col := 0
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}
		diags = append(diags, Diagnostic{
			FilePath: m[1],
			Line:     lineNum,
			Column:   col,
			Message:  m[4],
		})
	}
	return diags
}
