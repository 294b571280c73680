// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// codexLayout understands the Codex CLI's rollout archive: session
// files nested under sessions/YYYY/MM/DD/*.jsonl, each line a tagged
// envelope ({"type": "...", "payload": ..., "timestamp": "..."}).
type codexLayout struct{}

func (codexLayout) Discover(root string) ([]string, error) {
	return discoverJSONL(root)
}

// SessionID derives a stable v5 UUID from the file's absolute path, so
// repeated scans of an unmodified file agree on the session's identity.
func (codexLayout) SessionID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("codex:"+path)).String()
}

type codexEnvelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type codexPayload struct {
	Type string `json:"type"`
	Cwd  string `json:"cwd"`
	Info struct {
		TotalTokenUsage struct {
			InputTokens           int `json:"input_tokens"`
			CachedInputTokens     int `json:"cached_input_tokens"`
			OutputTokens          int `json:"output_tokens"`
			ReasoningOutputTokens int `json:"reasoning_output_tokens"`
		} `json:"total_token_usage"`
	} `json:"info"`
}

var codexEventMsgKinds = map[string]EventKind{
	"agent_reasoning_start": EventReasoningStart,
	"agent_reasoning_end":   EventReasoningEnd,
	"generation_start":      EventGenerationStart,
	"generation_end":        EventGenerationEnd,
}

func (codexLayout) ParseLine(line []byte) (Record, bool) {
	var env codexEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Record{}, false
	}

	switch env.Type {
	case "session_meta":
		var p codexPayload
		_ = json.Unmarshal(env.Payload, &p)
		return Record{Time: env.Timestamp, Kind: EventSessionMeta, Cwd: p.Cwd}, true

	case "response_item":
		var p codexPayload
		_ = json.Unmarshal(env.Payload, &p)
		switch p.Type {
		case "function_call":
			return Record{Time: env.Timestamp, Kind: EventFunctionCall}, true
		case "function_call_output":
			return Record{Time: env.Timestamp, Kind: EventFunctionResult}, true
		case "message":
			return Record{Time: env.Timestamp, Kind: EventMessage}, true
		default:
			return Record{}, false
		}

	case "event_msg":
		var p codexPayload
		_ = json.Unmarshal(env.Payload, &p)
		if p.Type == "token_count" {
			u := p.Info.TotalTokenUsage
			return Record{
				Time: env.Timestamp,
				Kind: EventTokenCount,
				Usage: TokenUsage{
					InputTokens:           u.InputTokens,
					CachedInputTokens:     u.CachedInputTokens,
					OutputTokens:          u.OutputTokens,
					ReasoningOutputTokens: u.ReasoningOutputTokens,
				},
			}, true
		}
		if kind, ok := codexEventMsgKinds[p.Type]; ok {
			return Record{Time: env.Timestamp, Kind: kind}, true
		}
		return Record{}, false

	default:
		return Record{}, false
	}
}
