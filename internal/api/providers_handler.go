// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nullstack-dev/deskbridge/internal/store"
)

type providersHandler struct {
	store *store.Store
}

func (h *providersHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.ListProviders())
}

func (h *providersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p store.Provider
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.store.CreateProvider(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, created)
}

func (h *providersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p store.Provider
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}
	p.ID = id
	updated, err := h.store.UpdateProvider(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *providersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteProvider(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
