// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullstack-dev/deskbridge/internal/fsops"
)

func TestFilesystemHandlerListRequiresRoot(t *testing.T) {
	h := &filesystemHandler{workspaceFS: fsops.New}

	req := httptest.NewRequest(http.MethodGet, "/fs/list", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilesystemHandlerReadReturnsContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	h := &filesystemHandler{workspaceFS: fsops.New}

	q := url.Values{"root": {dir}, "path": {"a.txt"}}
	req := httptest.NewRequest(http.MethodGet, "/fs/read?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	h.Read(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hello")
}
