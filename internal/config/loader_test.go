// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deskbridge.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{
  server: { port: 4000 }
}`), 0644))

	cfg, err := NewLoader().LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "never", cfg.Policy.ApprovalPolicy)
	assert.Equal(t, "full-access", cfg.Policy.SandboxPolicy)
	assert.Equal(t, 120, cfg.Archive.CacheTTLSeconds)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestFindConfigMissing(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(dir))

	_, err = NewLoader().FindConfig()
	assert.Error(t, err)
}

func TestFindConfigPresent(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deskbridge.hjson"), []byte("{}"), 0644))

	found, err := NewLoader().FindConfig()
	require.NoError(t, err)
	assert.Contains(t, found, "deskbridge.hjson")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 9110, cfg.Server.Port)
	assert.Equal(t, "never", cfg.Policy.ApprovalPolicy)
}
