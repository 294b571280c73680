// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("hello\n"), 0o644))
	run("add", "tracked.txt")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestStageThenUnstageRestoresIndexState(t *testing.T) {
	dir := initRepo(t)
	repo := New(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("hello\nmore\n"), 0o644))

	before, err := repo.Status(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Stage(ctx, "tracked.txt"))
	staged, err := repo.Status(ctx)
	require.NoError(t, err)
	require.NotEqual(t, before, staged)

	require.NoError(t, repo.Unstage(ctx, "tracked.txt"))
	after, err := repo.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestBranchInfoReturnsCurrentBranch(t *testing.T) {
	dir := initRepo(t)
	repo := New(dir)

	info, err := repo.BranchInfo(context.Background())
	require.NoError(t, err)
	require.False(t, info.Detached)
	require.NotEmpty(t, info.Name)
}

func TestLogReturnsCommits(t *testing.T) {
	dir := initRepo(t)
	repo := New(dir)

	entries, err := repo.Log(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "initial", entries[0].Subject)
}
