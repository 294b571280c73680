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

func TestProjectsHandlerCreateUpdateDelete(t *testing.T) {
	h := &projectsHandler{store: openTestStore(t)}

	body, _ := json.Marshal(store.Project{ToolKind: store.ToolCodex, Name: "demo", WorkspacePath: "/tmp/demo"})
	createReq := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewReader(body))
	createRec := httptest.NewRecorder()
	h.Create(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	var created store.Project
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

	updateBody, _ := json.Marshal(store.Project{ToolKind: store.ToolCodex, Name: "renamed", WorkspacePath: "/tmp/demo"})
	updateReq := httptest.NewRequest(http.MethodPut, "/projects/"+created.ID, bytes.NewReader(updateBody))
	updateReq = mux.SetURLVars(updateReq, map[string]string{"id": created.ID})
	updateRec := httptest.NewRecorder()
	h.Update(updateRec, updateReq)
	require.Equal(t, http.StatusOK, updateRec.Code)

	var updated store.Project
	require.NoError(t, json.Unmarshal(updateRec.Body.Bytes(), &updated))
	require.Equal(t, "renamed", updated.Name)

	deleteReq := httptest.NewRequest(http.MethodDelete, "/projects/"+created.ID, nil)
	deleteReq = mux.SetURLVars(deleteReq, map[string]string{"id": created.ID})
	deleteRec := httptest.NewRecorder()
	h.Delete(deleteRec, deleteReq)
	require.Equal(t, http.StatusNoContent, deleteRec.Code)

	listRec := httptest.NewRecorder()
	h.List(listRec, httptest.NewRequest(http.MethodGet, "/projects", nil))
	var listed []store.Project
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listed))
	require.Empty(t, listed)
}
