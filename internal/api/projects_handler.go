// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nullstack-dev/deskbridge/internal/store"
)

type projectsHandler struct {
	store *store.Store
}

func (h *projectsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.ListProjects())
}

func (h *projectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p store.Project
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.store.CreateProject(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, created)
}

func (h *projectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p store.Project
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}
	p.ID = id
	updated, err := h.store.UpdateProject(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *projectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteProject(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
