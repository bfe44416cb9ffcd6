// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/code-modifier/pkg/modifier"
	"github.com/petar-djukic/code-modifier/pkg/types"
)

// completionServer answers every chat completion with reply and records the
// user prompts it received.
type completionServer struct {
	*httptest.Server
	mu      sync.Mutex
	prompts []string
}

func newCompletionServer(t *testing.T, reply string) *completionServer {
	t.Helper()
	cs := &completionServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cs.mu.Lock()
		for _, m := range req.Messages {
			if m.Role == "user" {
				cs.prompts = append(cs.prompts, m.Content)
			}
		}
		cs.mu.Unlock()

		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
			"usage":   map[string]int{"prompt_tokens": 5, "completion_tokens": 1},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

// execute runs the CLI with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.py":  "class OldClass:\n    pass\n",
		"b.js":  "function old_function() {}\n",
		"c.txt": "OldClass\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func clearKeys(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CODE_MODIFIER_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "code-modifier "+version+"\n", out)
}

func TestHelpListsExtensions(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Recognized extensions: ")
	assert.Contains(t, out, ".py")
	assert.Contains(t, out, ".dart")
}

func TestRun_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, t.TempDir())
	assert.Error(t, err)
}

func TestRun_ProcessesFiles(t *testing.T) {
	clearKeys(t)
	t.Setenv("CODE_MODIFIER_API_KEY", "test-key")
	srv := newCompletionServer(t, "X")
	dir := scenarioDir(t)

	out, err := execute(t, dir, "Rename OldClass to NewClass",
		"--base-url", srv.URL+"/v1", "--no-git", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Processed: "+filepath.Join(dir, "a.py")+"\n")
	assert.Contains(t, out, "Processed: "+filepath.Join(dir, "b.js")+"\n")
	assert.NotContains(t, out, "c.txt")
	assert.Contains(t, out, "2 files: 2 rewritten, 0 planned, 0 skipped, 0 failed (12 tokens)")

	got, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "X", string(got))

	require.Len(t, srv.prompts, 2)
	assert.Contains(t, srv.prompts[0], "OldClass -> NewClass\nold_function -> new_function")
}

func TestRun_RenameFlagOverridesDefaultTable(t *testing.T) {
	clearKeys(t)
	srv := newCompletionServer(t, "X")
	dir := scenarioDir(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	_, err := execute(t, dir, "rename",
		"--base-url", srv.URL+"/v1", "--no-git", "--log-level", "error",
		"--rename", "Widget->Gadget")
	require.NoError(t, err)

	require.NotEmpty(t, srv.prompts)
	assert.Contains(t, srv.prompts[0], "Widget -> Gadget")
	assert.NotContains(t, srv.prompts[0], "OldClass -> NewClass")
}

func TestRun_RenamesFromConfigFile(t *testing.T) {
	clearKeys(t)
	t.Setenv("CODE_MODIFIER_API_KEY", "test-key")
	srv := newCompletionServer(t, "X")
	dir := scenarioDir(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"no-git: true\nlog-level: error\nbase-url: "+srv.URL+"/v1\nrenames:\n  - OldClass -> BetterClass\n"), 0o644))

	_, err := execute(t, dir, "rename", "--config", cfgPath)
	require.NoError(t, err)

	require.NotEmpty(t, srv.prompts)
	assert.Contains(t, srv.prompts[0], "OldClass -> BetterClass")
}

func TestRun_InvalidRename(t *testing.T) {
	clearKeys(t)
	_, err := execute(t, t.TempDir(), "rename", "--no-git", "--rename", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rename")
}

func TestRun_DryRunPrintsDiff(t *testing.T) {
	clearKeys(t)
	t.Setenv("CODE_MODIFIER_API_KEY", "test-key")
	srv := newCompletionServer(t, "class NewClass:\n    pass\n")
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("class OldClass:\n    pass\n"), 0o644))

	out, err := execute(t, dir, "rename", "--base-url", srv.URL+"/v1", "--dry-run", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Planned: "+path)
	assert.Contains(t, out, "-class OldClass:")
	assert.Contains(t, out, "+class NewClass:")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class OldClass:\n    pass\n", string(got))
}

func TestRun_JSONSummary(t *testing.T) {
	clearKeys(t)
	t.Setenv("CODE_MODIFIER_API_KEY", "test-key")
	srv := newCompletionServer(t, "X")
	dir := scenarioDir(t)

	out, err := execute(t, dir, "rename", "--base-url", srv.URL+"/v1", "--no-git", "--json", "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, out, "Processed:")

	var summary types.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, dir, summary.Root)
	assert.Equal(t, 2, summary.Count(types.StatusRewritten))
	assert.Equal(t, "NewClass", summary.Renames["OldClass"])
}

func TestRun_MissingKeySkipsFiles(t *testing.T) {
	clearKeys(t)
	dir := scenarioDir(t)

	out, err := execute(t, dir, "rename", "--no-git", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped "+filepath.Join(dir, "a.py")+": ")
	assert.Contains(t, out, "0 rewritten")
}

func TestRun_InvalidRoot(t *testing.T) {
	clearKeys(t)
	t.Setenv("CODE_MODIFIER_API_KEY", "test-key")
	srv := newCompletionServer(t, "X")
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("class OldClass: pass\n"), 0o644))

	out, err := execute(t, path, "rename", "--base-url", srv.URL+"/v1", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, modifier.ErrInvalidRoot)
	assert.Equal(t, 1, strings.Count(err.Error(), "is not a directory"), err.Error())
	assert.Empty(t, out)
	assert.Empty(t, srv.prompts)
}

func TestSymbols(t *testing.T) {
	dir := scenarioDir(t)

	out, err := execute(t, "symbols", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "OldClass: "+filepath.Join(dir, "a.py")+"\n")
	assert.Contains(t, out, "old_function: "+filepath.Join(dir, "b.js")+"\n")
	assert.Contains(t, out, "2 symbols in 2 files")
}

func TestSymbols_JSON(t *testing.T) {
	dir := scenarioDir(t)

	out, err := execute(t, "symbols", dir, "--json", "--log-level", "error")
	require.NoError(t, err)

	var table map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	assert.Equal(t, []string{filepath.Join(dir, "a.py")}, table["OldClass"])
}

func TestUndo_NotARepo(t *testing.T) {
	_, err := execute(t, "undo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening repository")
}

func TestResolveAPIKey(t *testing.T) {
	clearKeys(t)
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	assert.Empty(t, resolveAPIKey(v, "openai"))

	t.Setenv("GOOGLE_API_KEY", "google")
	assert.Equal(t, "google", resolveAPIKey(v, "gemini"))
	t.Setenv("GEMINI_API_KEY", "gemini")
	assert.Equal(t, "gemini", resolveAPIKey(v, "gemini"))

	t.Setenv("OPENAI_API_KEY", "openai")
	assert.Equal(t, "openai", resolveAPIKey(v, "openai"))
	assert.Equal(t, "openai", resolveAPIKey(v, ""))
	assert.Empty(t, resolveAPIKey(v, "bedrock"))

	t.Setenv("CODE_MODIFIER_API_KEY", "shared")
	assert.Equal(t, "shared", resolveAPIKey(v, "gemini"))
}

func TestParseRenameList(t *testing.T) {
	m, err := parseRenameList([]string{"Old->New", "old_fn -> new_fn", " "})
	require.NoError(t, err)
	assert.Equal(t, types.RenameMapping{"Old": "New", "old_fn": "new_fn"}, m)

	_, err = parseRenameList([]string{"Old=New"})
	assert.Error(t, err)
}
