// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// claudeCodeLayout understands the Claude Code CLI's project archive:
// one directory per encoded workspace path under projects/, each
// session a flat *.jsonl file of message-shaped lines.
type claudeCodeLayout struct{}

func (claudeCodeLayout) Discover(root string) ([]string, error) {
	return discoverJSONL(root)
}

func (claudeCodeLayout) SessionID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("claude-code:"+path)).String()
}

type claudeLine struct {
	Type      string          `json:"type"`
	Cwd       string          `json:"cwd"`
	Timestamp time.Time       `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
	} `json:"content"`
	Usage struct {
		InputTokens              int `json:"input_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		OutputTokens             int `json:"output_tokens"`
	} `json:"usage"`
}

func (claudeCodeLayout) ParseLine(line []byte) (Record, bool) {
	var l claudeLine
	if err := json.Unmarshal(line, &l); err != nil {
		return Record{}, false
	}

	switch l.Type {
	case "summary":
		return Record{}, false

	case "user":
		if l.Cwd != "" {
			return Record{Time: l.Timestamp, Kind: EventSessionMeta, Cwd: l.Cwd}, true
		}
		return Record{Time: l.Timestamp, Kind: EventMessage}, true

	case "assistant":
		var msg claudeMessage
		_ = json.Unmarshal(l.Message, &msg)

		usage := TokenUsage{
			InputTokens:       msg.Usage.InputTokens,
			CachedInputTokens: msg.Usage.CacheReadInputTokens,
			OutputTokens:      msg.Usage.OutputTokens,
		}

		hasToolUse := false
		for _, block := range msg.Content {
			if block.Type == "tool_use" {
				hasToolUse = true
			}
		}
		kind := EventMessage
		if hasToolUse {
			kind = EventFunctionCall
		}
		return Record{Time: l.Timestamp, Kind: kind, Usage: usage}, true

	case "tool_result":
		return Record{Time: l.Timestamp, Kind: EventFunctionResult}, true

	default:
		return Record{}, false
	}
}
