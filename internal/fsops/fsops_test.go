// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspace(t *testing.T) *Workspace {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world\nfoo bar\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("needle here\n"), 0o644))
	return New(dir)
}

func TestListSeparatesDirsAndFiles(t *testing.T) {
	w := setupWorkspace(t)
	result, err := w.List("")
	require.NoError(t, err)
	assert.Len(t, result.Directories, 1)
	assert.Len(t, result.Files, 1)
	assert.Equal(t, "sub", result.Directories[0].Name)
}

func TestListRejectsEscapingPath(t *testing.T) {
	w := setupWorkspace(t)
	_, err := w.List("../../etc")
	require.Error(t, err)
}

func TestReadReturnsContent(t *testing.T) {
	w := setupWorkspace(t)
	result, err := w.Read("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world\nfoo bar\n", result.Content)
	assert.False(t, result.IsBinary)
	assert.False(t, result.Truncated)
}

func TestSearchFindsMatchAcrossSubdirectories(t *testing.T) {
	w := setupWorkspace(t)
	result, err := w.Search("", "needle", false, true, 10)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, filepath.Join("sub", "b.txt"), result.Matches[0].Path)
	assert.Equal(t, 1, result.Matches[0].Line)
}

func TestSearchRegexCaseInsensitive(t *testing.T) {
	w := setupWorkspace(t)
	result, err := w.Search("", "FOO.*", true, false, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalMatches)
}
