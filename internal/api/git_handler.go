// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"strconv"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
	"github.com/nullstack-dev/deskbridge/internal/gitops"
)

// gitHandler answers the git status/diff/log/stage/unstage/commit/push/pull
// endpoints (spec §6) against the repository named by the "path" query
// or body param.
type gitHandler struct{}

func repoFromQuery(r *http.Request) (*gitops.Repo, error) {
	path := r.URL.Query().Get("path")
	if path == "" {
		return nil, apierr.InvalidArgument("path is required")
	}
	return gitops.New(path), nil
}

func (h *gitHandler) Status(w http.ResponseWriter, r *http.Request) {
	repo, err := repoFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := repo.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status)
}

func (h *gitHandler) Diff(w http.ResponseWriter, r *http.Request) {
	repo, err := repoFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	staged, _ := strconv.ParseBool(r.URL.Query().Get("staged"))
	diff, err := repo.Diff(r.Context(), r.URL.Query().Get("file"), staged)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"diff": diff})
}

func (h *gitHandler) Log(w http.ResponseWriter, r *http.Request) {
	repo, err := repoFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	n := 50
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	entries, err := repo.Log(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entries)
}

type gitPathRequest struct {
	Path    string `json:"path"`
	File    string `json:"file"`
	Message string `json:"message"`
}

func (h *gitHandler) decodeRepo(w http.ResponseWriter, r *http.Request) (*gitops.Repo, gitPathRequest, bool) {
	var req gitPathRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return nil, req, false
	}
	if req.Path == "" {
		writeError(w, apierr.InvalidArgument("path is required"))
		return nil, req, false
	}
	return gitops.New(req.Path), req, true
}

func (h *gitHandler) Stage(w http.ResponseWriter, r *http.Request) {
	repo, req, ok := h.decodeRepo(w, r)
	if !ok {
		return
	}
	if err := repo.Stage(r.Context(), req.File); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *gitHandler) Unstage(w http.ResponseWriter, r *http.Request) {
	repo, req, ok := h.decodeRepo(w, r)
	if !ok {
		return
	}
	if err := repo.Unstage(r.Context(), req.File); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *gitHandler) Commit(w http.ResponseWriter, r *http.Request) {
	repo, req, ok := h.decodeRepo(w, r)
	if !ok {
		return
	}
	if req.Message == "" {
		writeError(w, apierr.InvalidArgument("message is required"))
		return
	}
	if err := repo.Commit(r.Context(), req.Message); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *gitHandler) Push(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.decodeRepo(w, r)
	if !ok {
		return
	}
	if err := repo.Push(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *gitHandler) Pull(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.decodeRepo(w, r)
	if !ok {
		return
	}
	if err := repo.Pull(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
