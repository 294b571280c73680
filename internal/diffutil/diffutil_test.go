// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package diffutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedDiffForEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline2\nline3\n"), 0o644))

	diff, ok := UnifiedDiffForEdit(dir, EditInput{FilePath: "a.txt", OldString: "line2", NewString: "changed"})
	require.True(t, ok)
	assert.Contains(t, diff, "-line2")
	assert.Contains(t, diff, "+changed")
}

func TestUnifiedDiffForEditMissingOldStringFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("line1\n"), 0o644))

	_, ok := UnifiedDiffForEdit(dir, EditInput{FilePath: "a.txt", OldString: "nope", NewString: "x"})
	assert.False(t, ok)
}

func TestUnifiedDiffForWriteNewFile(t *testing.T) {
	dir := t.TempDir()
	diff, ok := UnifiedDiffForWrite(dir, WriteInput{FilePath: "new.txt", Content: "hello\n"})
	require.True(t, ok)
	assert.Contains(t, diff, "+hello")
}
