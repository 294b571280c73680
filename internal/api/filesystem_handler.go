// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
	"github.com/nullstack-dev/deskbridge/internal/fsops"
)

// filesystemHandler answers the Filesystem list/read/search endpoints
// (spec §6) against a bound workspace named by the "root" query param.
type filesystemHandler struct {
	workspaceFS func(workspacePath string) *fsops.Workspace
}

func (h *filesystemHandler) workspace(r *http.Request) (*fsops.Workspace, error) {
	root := r.URL.Query().Get("root")
	if root == "" {
		return nil, apierr.InvalidArgument("root is required")
	}
	return h.workspaceFS(root), nil
}

func (h *filesystemHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspace(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := ws.List(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

func (h *filesystemHandler) Read(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspace(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := ws.Read(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

type searchRequest struct {
	Root          string `json:"root"`
	Path          string `json:"path"`
	Query         string `json:"query"`
	IsRegex       bool   `json:"isRegex"`
	CaseSensitive bool   `json:"caseSensitive"`
	MaxResults    int    `json:"maxResults"`
}

func (h *filesystemHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Root == "" {
		writeError(w, apierr.InvalidArgument("root is required"))
		return
	}
	ws := h.workspaceFS(req.Root)
	result, err := ws.Search(req.Path, req.Query, req.IsRegex, req.CaseSensitive, req.MaxResults)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}
