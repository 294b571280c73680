// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullstack-dev/deskbridge/internal/agent"
	"github.com/nullstack-dev/deskbridge/internal/archive"
	"github.com/nullstack-dev/deskbridge/internal/fsops"
	"github.com/nullstack-dev/deskbridge/internal/installer"
)

func TestRouterAppliesCORSAndRoutesProviders(t *testing.T) {
	st := openTestStore(t)
	scanner := archive.NewScanner(map[archive.ToolKind]string{})
	cache := archive.NewAggregateCache(scanner, 0)

	router := NewRouter(Dependencies{
		Store:     st,
		Scanner:   scanner,
		Cache:     cache,
		Installer: installer.NewManager(nil),
		WorkspaceFS: func(root string) *fsops.Workspace {
			return fsops.New(root)
		},
		Gateways:    map[agent.ToolKind]*agent.Gateway{},
		ConfigPaths: map[string]string{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, "[]", rec.Body.String())
}
