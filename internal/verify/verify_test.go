// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses unix shell utilities")
	}
}

func TestRun_NoCommand(t *testing.T) {
	assert.Nil(t, Run(context.Background(), Config{Dir: t.TempDir()}))
	assert.Nil(t, Run(context.Background(), Config{Dir: t.TempDir(), Command: "   "}))
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("x"), 0o644))

	res := Run(context.Background(), Config{Dir: dir, Command: "ls"})
	require.NotNil(t, res)
	assert.True(t, res.OK)
	assert.Equal(t, "ls", res.Command)
	assert.Contains(t, res.Output, "a.py")
	assert.Empty(t, res.Diagnostics)

	outcome := res.Outcome()
	assert.True(t, outcome.OK)
	assert.Equal(t, "ls", outcome.Command)
}

func TestRun_Failure(t *testing.T) {
	skipOnWindows(t)
	res := Run(context.Background(), Config{Dir: t.TempDir(), Command: "false"})
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.False(t, res.TimedOut)
}

func TestRun_MissingBinary(t *testing.T) {
	res := Run(context.Background(), Config{Dir: t.TempDir(), Command: "definitely-not-a-real-binary-xyz"})
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Output)
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)
	res := Run(context.Background(), Config{Dir: t.TempDir(), Command: "sleep 5", Timeout: 50 * time.Millisecond})
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.True(t, res.TimedOut)
}

func TestResult_NilOutcome(t *testing.T) {
	var r *Result
	assert.Nil(t, r.Outcome())
}

func TestParseDiagnostics(t *testing.T) {
	out := "running checks\n" +
		"src/a.py:10:5: undefined name 'OldClass'\n" +
		"b.js:3: unexpected token\n" +
		"FAILED\n"

	diags := parseDiagnostics(out)
	require.Len(t, diags, 2)

	assert.Equal(t, Diagnostic{FilePath: "src/a.py", Line: 10, Column: 5, Message: "undefined name 'OldClass'"}, diags[0])
	assert.Equal(t, "src/a.py:10:5: undefined name 'OldClass'", diags[0].String())

	assert.Equal(t, "b.js", diags[1].FilePath)
	assert.Equal(t, 3, diags[1].Line)
	assert.Zero(t, diags[1].Column)
	assert.Equal(t, "b.js:3: unexpected token", diags[1].String())
}
