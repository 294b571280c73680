// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/nullstack-dev/deskbridge/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestProvidersHandlerCreateAndList(t *testing.T) {
	h := &providersHandler{store: openTestStore(t)}

	body, _ := json.Marshal(store.Provider{Name: "local", BaseAddress: "http://127.0.0.1:1234", RequestShape: store.ShapeOpenAICompat})
	req := httptest.NewRequest(http.MethodPost, "/providers", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created store.Provider
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	listRec := httptest.NewRecorder()
	h.List(listRec, httptest.NewRequest(http.MethodGet, "/providers", nil))
	var listed []store.Provider
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestProvidersHandlerDeleteUnknownNotFound(t *testing.T) {
	h := &providersHandler{store: openTestStore(t)}

	req := httptest.NewRequest(http.MethodDelete, "/providers/nope", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
