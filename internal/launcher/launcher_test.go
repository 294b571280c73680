// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mytool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))

	spawn, err := Resolve(context.Background(), "mytool", Options{ExplicitPath: path})
	require.NoError(t, err)
	assert.Equal(t, path, spawn.Path)
}

func TestResolveExplicitPathMissing(t *testing.T) {
	_, err := Resolve(context.Background(), "mytool", Options{ExplicitPath: "/nonexistent/mytool"})
	assert.Error(t, err)
}

func TestResolveWindowsShimWrapsInCmd(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("windows-only shim wrapping behavior")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "mytool.cmd")
	require.NoError(t, os.WriteFile(path, []byte("@echo off\n"), 0755))

	spawn, err := Resolve(context.Background(), "mytool", Options{ExplicitPath: path})
	require.NoError(t, err)
	assert.Equal(t, "cmd", spawn.Path)
	assert.Equal(t, []string{"cmd", "/c", path}, spawn.Argv)
}

func TestIsAliveCurrentProcess(t *testing.T) {
	assert.True(t, IsAlive(os.Getpid()))
}
