// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"encoding/json"

	"github.com/nullstack-dev/deskbridge/internal/diffutil"
)

// statusPart is the subset of an A2A status message part this gateway
// understands well enough to enrich; unrecognized fields round-trip
// untouched through enrichPart's generic field map.
type statusPart struct {
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// enrichStatus adds a unified diff to any Edit/Write tool-call part in
// status, so the client can render the change without re-reading the
// file itself. Best-effort: a part that can't be enriched is forwarded
// unchanged.
func enrichStatus(status json.RawMessage, cwd string) json.RawMessage {
	var env struct {
		Message *struct {
			Parts []json.RawMessage `json:"parts"`
		} `json:"message"`
	}
	if err := json.Unmarshal(status, &env); err != nil || env.Message == nil || len(env.Message.Parts) == 0 {
		return status
	}

	changed := false
	parts := make([]json.RawMessage, len(env.Message.Parts))
	for i, raw := range env.Message.Parts {
		enriched, ok := enrichPart(raw, cwd)
		if ok {
			parts[i] = enriched
			changed = true
		} else {
			parts[i] = raw
		}
	}
	if !changed {
		return status
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(status, &generic); err != nil {
		return status
	}
	message := map[string]interface{}{"parts": parts}
	// preserve sibling fields of "message" (e.g. messageId) untouched
	var origMessage map[string]json.RawMessage
	_ = json.Unmarshal(generic["message"], &origMessage)
	for k, v := range origMessage {
		if k == "parts" {
			continue
		}
		message[k] = v
	}
	out, err := json.Marshal(message)
	if err != nil {
		return status
	}
	generic["message"] = out
	result, err := json.Marshal(generic)
	if err != nil {
		return status
	}
	return result
}

func enrichPart(raw json.RawMessage, cwd string) (json.RawMessage, bool) {
	var part statusPart
	if err := json.Unmarshal(raw, &part); err != nil {
		return raw, false
	}
	if part.Type != "tool_use" || part.Input == nil {
		return raw, false
	}

	var diff string
	var ok bool
	switch part.Name {
	case "Edit":
		var in diffutil.EditInput
		if json.Unmarshal(part.Input, &in) == nil {
			diff, ok = diffutil.UnifiedDiffForEdit(cwd, in)
		}
	case "Write":
		var in diffutil.WriteInput
		if json.Unmarshal(part.Input, &in) == nil {
			diff, ok = diffutil.UnifiedDiffForWrite(cwd, in)
		}
	default:
		return raw, false
	}
	if !ok {
		return raw, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw, false
	}
	diffJSON, _ := json.Marshal(diff)
	fields["diff"] = diffJSON
	out, err := json.Marshal(fields)
	if err != nil {
		return raw, false
	}
	return out, true
}
