// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
	"github.com/nullstack-dev/deskbridge/internal/installer"
)

type toolsHandler struct {
	installer   *installer.Manager
	configPaths map[string]string
}

func (h *toolsHandler) Status(w http.ResponseWriter, r *http.Request) {
	tool := mux.Vars(r)["tool"]
	status := h.installer.Probe(r.Context(), tool, h.configPaths[tool])
	writeJSON(w, status)
}

func (h *toolsHandler) InstallTool(w http.ResponseWriter, r *http.Request) {
	tool := mux.Vars(r)["tool"]
	jobID, err := h.installer.InstallTool(tool)
	if err != nil {
		writeError(w, apierr.Wrap(apierr.KindInvalidArgument, "cannot install tool", err))
		return
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

func (h *toolsHandler) InstallNode(w http.ResponseWriter, r *http.Request) {
	jobID := h.installer.InstallNode()
	writeJSONStatus(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

func (h *toolsHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := h.installer.JobStatusOf(id)
	if !ok {
		writeError(w, apierr.NotFound("job %q not found", id))
		return
	}
	writeJSON(w, job)
}
