// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api wires the HTTP surface named in spec §6: routing,
// middleware, and per-resource handlers over the store, gateways,
// terminal mux, archive scanner, gitops, fsops, and installer.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

// writeJSON writes v as the response body with a 200 status.
func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps err through apierr and writes the standard envelope
// (spec §7 "single top-level error field, no stack traces").
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apierr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    apierr.Code(err),
			"message": apierr.Message(err),
		},
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, "malformed request body", err)
	}
	return nil
}
