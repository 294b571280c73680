// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
	"github.com/nullstack-dev/deskbridge/internal/archive"
	"github.com/nullstack-dev/deskbridge/internal/stats"
	"github.com/nullstack-dev/deskbridge/internal/store"
)

type sessionsHandler struct {
	store   *store.Store
	scanner *archive.Scanner
	cache   *archive.AggregateCache
}

// List answers "Project sessions" (spec §6): Historical Sessions whose
// Cwd matches the project's bound workspace path.
func (h *sessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	project, err := h.store.GetProject(id)
	if err != nil {
		writeError(w, err)
		return
	}

	all, err := h.cache.Sessions()
	if err != nil {
		writeError(w, apierr.Wrap(apierr.KindTransport, "scan failed", err))
		return
	}

	var matched []archive.HistoricalSession
	for _, s := range all {
		if normalizedEqual(s.Cwd, project.WorkspacePath) {
			matched = append(matched, s)
		}
	}
	writeJSON(w, matched)
}

func normalizedEqual(a, b string) bool {
	return stats.NormalizeWorkspace(a) == stats.NormalizeWorkspace(b)
}

// ScanStream answers "Scan sessions" (spec §6): `log:` events during
// the scan, a single `done:` event at the end.
func (h *sessionsHandler) ScanStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, apierr.New(apierr.KindFatal, "streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	toolType := r.URL.Query().Get("tool")
	fmt.Fprintf(w, "event: log\ndata: scanning %s archive\n\n", toolType)
	flusher.Flush()

	h.cache.Invalidate()
	sessions, err := h.cache.Sessions()
	if err != nil {
		fmt.Fprintf(w, "event: log\ndata: scan error: %s\n\n", err.Error())
		flusher.Flush()
	}

	fmt.Fprintf(w, "event: done\ndata: {\"count\":%d}\n\n", len(sessions))
	flusher.Flush()
}

func (h *sessionsHandler) TokenTotal(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("force") == "true" {
		h.cache.Invalidate()
	}
	sessions, err := h.cache.Sessions()
	if err != nil {
		writeError(w, apierr.Wrap(apierr.KindTransport, "scan failed", err))
		return
	}
	writeJSON(w, stats.Total(sessions))
}

func (h *sessionsHandler) TokenDaily(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("force") == "true" {
		h.cache.Invalidate()
	}
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	sessions, err := h.cache.Sessions()
	if err != nil {
		writeError(w, apierr.Wrap(apierr.KindTransport, "scan failed", err))
		return
	}
	writeJSON(w, stats.Window(sessions, time.Now(), days))
}
