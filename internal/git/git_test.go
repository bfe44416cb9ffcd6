// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ValidRepo(t *testing.T) {
	dir := initTestRepo(t)

	repo, err := Open(Config{Root: dir, AutoCommit: true, DirtyCommit: true})
	require.NoError(t, err)
	assert.NotNil(t, repo)
}

func TestOpen_FindsRepoFromSubdirectory(t *testing.T) {
	dir := initTestRepo(t)
	sub := filepath.Join(dir, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, err := Open(Config{Root: sub})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(repo.WorkDir())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(Config{Root: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoGit)
}

func TestIsDirty(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		dir := initTestRepo(t)
		repo, err := Open(Config{Root: dir})
		require.NoError(t, err)

		dirty, err := repo.IsDirty()
		require.NoError(t, err)
		assert.False(t, dirty)
	})

	t.Run("modified tracked file", func(t *testing.T) {
		dir := initTestRepo(t)
		repo, err := Open(Config{Root: dir})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("class NewClass:\n    pass\n"), 0o644))

		dirty, err := repo.IsDirty()
		require.NoError(t, err)
		assert.True(t, dirty)
	})

	t.Run("untracked file", func(t *testing.T) {
		dir := initTestRepo(t)
		repo, err := Open(Config{Root: dir})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "new.js"), []byte("function f() {}\n"), 0o644))

		dirty, err := repo.IsDirty()
		require.NoError(t, err)
		assert.True(t, dirty)
	})
}

func TestIsModifierCommit(t *testing.T) {
	t.Run("trailer present", func(t *testing.T) {
		dir := initTestRepo(t)
		addFileAndCommit(t, dir, "b.js", "function f() {}\n", "refactor: rename\n\n"+Trailer+"\n")

		repo, err := Open(Config{Root: dir})
		require.NoError(t, err)

		ok, err := repo.IsModifierCommit()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("trailer absent", func(t *testing.T) {
		dir := initTestRepo(t)
		repo, err := Open(Config{Root: dir})
		require.NoError(t, err)

		ok, err := repo.IsModifierCommit()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("trailer mentioned inline does not count", func(t *testing.T) {
		dir := initTestRepo(t)
		addFileAndCommit(t, dir, "b.js", "x\n", "docs: explain the "+Trailer+" line\n")

		repo, err := Open(Config{Root: dir})
		require.NoError(t, err)

		ok, err := repo.IsModifierCommit()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGenerateMessage(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		files       []string
		wantPrefix  string
	}{
		{"rename", "Rename OldClass to NewClass everywhere", []string{"a.py"}, "refactor: "},
		{"fix", "Fix the off-by-one in the loop", []string{"loop.go"}, "fix: "},
		{"docs", "Add docstrings to every function", []string{"a.py"}, "docs: "},
		{"feat", "Add a logging call to each handler", []string{"h.js"}, "feat: "},
		{"default", "Make it nicer", []string{"x.rb"}, "refactor: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := GenerateMessage(tt.instruction, tt.files)
			subject := firstLineOf(msg)
			assert.True(t, strings.HasPrefix(subject, tt.wantPrefix), subject)
			assert.LessOrEqual(t, len(subject), maxSubjectLength)
			assert.True(t, hasTrailer(msg))
		})
	}
}

func TestGenerateMessage_ListsFiles(t *testing.T) {
	msg := GenerateMessage("Rename old_function", []string{"src/a.py", "web/b.js"})
	assert.Contains(t, msg, "Rewritten files:\n- src/a.py\n- web/b.js\n")
	assert.True(t, strings.HasSuffix(msg, Trailer+"\n"))
}

func TestGenerateMessage_LongInstructionTruncated(t *testing.T) {
	long := "Rename every helper so that it follows the new naming convention agreed on by the team last week"
	subject := firstLineOf(GenerateMessage(long, nil))
	assert.LessOrEqual(t, len(subject), maxSubjectLength)
	assert.True(t, strings.HasSuffix(subject, "..."))
}

func TestGenerateMessage_MultilineAndEmpty(t *testing.T) {
	subject := firstLineOf(GenerateMessage("Rename Foo.\nAlso update callers.", nil))
	assert.Equal(t, "refactor: rename Foo", subject)

	subject = firstLineOf(GenerateMessage("   ", nil))
	assert.Equal(t, "refactor: apply code-modifier changes", subject)
}

func TestInferCommitType(t *testing.T) {
	tests := []struct {
		instruction string
		want        string
	}{
		{"fix the bug", "fix"},
		{"rename OldClass", "refactor"},
		{"add a feature", "feat"},
		{"update documentation", "docs"},
		{"optimize performance", "perf"},
		{"prefix the name", "refactor"},
	}
	for _, tt := range tests {
		t.Run(tt.instruction, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCommitType(tt.instruction))
		})
	}
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("please fix it", "fix"))
	assert.False(t, containsWord("prefix it", "fix"))
	assert.True(t, containsWord("we should clean up", "clean up"))
	assert.False(t, containsWord("", "fix"))
	assert.False(t, containsWord("éfix it", "fix"))
	assert.False(t, containsWord("fixé", "fix"))
	assert.True(t, containsWord("« fix »", "fix"))
}

// initTestRepo creates a repository in a temp dir with one committed file.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("class OldClass:\n    pass\n"), 0o644))
	_, err = wt.Add("app.py")
	require.NoError(t, err)

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

// addFileAndCommit writes name and commits it with msg.
func addFileAndCommit(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
