// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/nullstack-dev/deskbridge/internal/agent"
	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

type chatHandler struct {
	gateways map[agent.ToolKind]*agent.Gateway
}

// SendSubscribe answers "Chat turn" (spec §6): the request body is the
// A2A JSON-RPC envelope; the tool it targets is named by the query
// string since the envelope itself is tool-agnostic.
func (h *chatHandler) SendSubscribe(w http.ResponseWriter, r *http.Request) {
	toolType := agent.ToolKind(r.URL.Query().Get("tool"))
	gw, ok := h.gateways[toolType]
	if !ok {
		writeError(w, apierr.InvalidArgument("unknown tool %q", toolType))
		return
	}

	var req agent.SendSubscribeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := gw.HandleSendSubscribe(r.Context(), req, w); err != nil {
		writeError(w, err)
	}
}
