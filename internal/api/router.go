// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/gorilla/mux"

	"github.com/nullstack-dev/deskbridge/internal/agent"
	"github.com/nullstack-dev/deskbridge/internal/api/middleware"
	"github.com/nullstack-dev/deskbridge/internal/archive"
	"github.com/nullstack-dev/deskbridge/internal/fsops"
	"github.com/nullstack-dev/deskbridge/internal/installer"
	"github.com/nullstack-dev/deskbridge/internal/store"
	"github.com/nullstack-dev/deskbridge/internal/termmux"
)

// Dependencies holds every collaborator the HTTP surface is wired
// against (spec §6).
type Dependencies struct {
	Store       *store.Store
	Scanner     *archive.Scanner
	Cache       *archive.AggregateCache
	Terminal    *termmux.Handler
	Installer   *installer.Manager
	WorkspaceFS func(workspacePath string) *fsops.Workspace
	Gateways    map[agent.ToolKind]*agent.Gateway
	ConfigPaths map[string]string
}

// NewRouter builds the full HTTP surface described in spec §6.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	tools := &toolsHandler{installer: deps.Installer, configPaths: deps.ConfigPaths}
	v1.HandleFunc("/tools/{tool}/status", tools.Status).Methods("GET")
	v1.HandleFunc("/tools/{tool}/install", tools.InstallTool).Methods("POST")
	v1.HandleFunc("/node/install", tools.InstallNode).Methods("POST")
	v1.HandleFunc("/jobs/{id}", tools.JobStatus).Methods("GET")

	providers := &providersHandler{store: deps.Store}
	v1.HandleFunc("/providers", providers.List).Methods("GET")
	v1.HandleFunc("/providers", providers.Create).Methods("POST")
	v1.HandleFunc("/providers/{id}", providers.Update).Methods("PUT")
	v1.HandleFunc("/providers/{id}", providers.Delete).Methods("DELETE")

	projects := &projectsHandler{store: deps.Store}
	v1.HandleFunc("/projects", projects.List).Methods("GET")
	v1.HandleFunc("/projects", projects.Create).Methods("POST")
	v1.HandleFunc("/projects/{id}", projects.Update).Methods("PUT")
	v1.HandleFunc("/projects/{id}", projects.Delete).Methods("DELETE")

	sessions := &sessionsHandler{store: deps.Store, scanner: deps.Scanner, cache: deps.Cache}
	v1.HandleFunc("/projects/{id}/sessions", sessions.List).Methods("GET")
	v1.HandleFunc("/sessions/scan", sessions.ScanStream).Methods("GET")
	v1.HandleFunc("/tokens/total", sessions.TokenTotal).Methods("GET")
	v1.HandleFunc("/tokens/daily", sessions.TokenDaily).Methods("GET")

	chat := &chatHandler{gateways: deps.Gateways}
	v1.HandleFunc("/chat", chat.SendSubscribe).Methods("POST")

	fsHandler := &filesystemHandler{workspaceFS: deps.WorkspaceFS}
	v1.HandleFunc("/fs/list", fsHandler.List).Methods("GET")
	v1.HandleFunc("/fs/read", fsHandler.Read).Methods("GET")
	v1.HandleFunc("/fs/search", fsHandler.Search).Methods("POST")

	git := &gitHandler{}
	v1.HandleFunc("/git/status", git.Status).Methods("GET")
	v1.HandleFunc("/git/diff", git.Diff).Methods("GET")
	v1.HandleFunc("/git/log", git.Log).Methods("GET")
	v1.HandleFunc("/git/stage", git.Stage).Methods("POST")
	v1.HandleFunc("/git/unstage", git.Unstage).Methods("POST")
	v1.HandleFunc("/git/commit", git.Commit).Methods("POST")
	v1.HandleFunc("/git/push", git.Push).Methods("POST")
	v1.HandleFunc("/git/pull", git.Pull).Methods("POST")

	if deps.Terminal != nil {
		r.Handle("/ws/terminal", deps.Terminal)
	}

	return r
}
