// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestProjectCreateReadUpdateDeleteRoundTrip(t *testing.T) {
	s := openTestStore(t)

	created, err := s.CreateProject(Project{ToolKind: ToolCodex, Name: "demo", WorkspacePath: "/tmp/ws"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	read, err := s.GetProject(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, read)

	created.Name = "demo-renamed"
	updated, err := s.UpdateProject(created)
	require.NoError(t, err)

	read, err = s.GetProject(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, read)
	assert.Equal(t, "demo-renamed", read.Name)

	require.NoError(t, s.DeleteProject(created.ID))
	_, err = s.GetProject(created.ID)
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindNotFound, apiErr.Kind)
}

func TestProjectNameUniquenessPerToolKindConflict(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateProject(Project{ToolKind: ToolCodex, Name: "demo", WorkspacePath: "/a"})
	require.NoError(t, err)

	before := s.ListProjects()

	_, err = s.CreateProject(Project{ToolKind: ToolCodex, Name: "demo", WorkspacePath: "/b"})
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindConflict, apiErr.Kind)

	// same name under a different tool kind is allowed
	_, err = s.CreateProject(Project{ToolKind: ToolClaudeCode, Name: "demo", WorkspacePath: "/c"})
	require.NoError(t, err)

	assert.Len(t, s.ListProjects(), len(before)+1) // the failed attempt stored nothing; only the later create did
}

func TestProviderDeleteNullsReferencingProjects(t *testing.T) {
	s := openTestStore(t)

	provider, err := s.CreateProvider(Provider{Name: "openai", BaseAddress: "https://api.openai.com", RequestShape: ShapeOpenAICompat})
	require.NoError(t, err)

	project, err := s.CreateProject(Project{ToolKind: ToolCodex, Name: "demo", WorkspacePath: "/a", ProviderID: &provider.ID})
	require.NoError(t, err)
	require.NotNil(t, project.ProviderID)

	require.NoError(t, s.DeleteProvider(provider.ID))

	reread, err := s.GetProject(project.ID)
	require.NoError(t, err)
	assert.Nil(t, reread.ProviderID)
}

func TestResolveWorkdir(t *testing.T) {
	s := openTestStore(t)
	project, err := s.CreateProject(Project{ToolKind: ToolCodex, Name: "demo", WorkspacePath: "/tmp/ws"})
	require.NoError(t, err)

	dir, ok := s.ResolveWorkdir(project.ID)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/ws", dir)

	_, ok = s.ResolveWorkdir("missing")
	assert.False(t, ok)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	require.NoError(t, err)
	_, err = s1.CreateProject(Project{ToolKind: ToolCodex, Name: "demo", WorkspacePath: "/a"})
	require.NoError(t, err)

	s2, err := Open(dir)
	require.NoError(t, err)
	assert.Len(t, s2.ListProjects(), 1)
}
