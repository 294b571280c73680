// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/nullstack-dev/deskbridge/internal/rpcclient"
)

// claudeCodeAdapter sends each turn as a `session/turn` JSON-RPC request
// over rpcclient, keyed by a session id. Unlike Codex, Claude Code has
// no separate thread-creation call, so StartThread is a local id mint
// rather than a round trip to the child (recorded as an Open Question
// decision in the grounding ledger). The child is launched with only
// the configured extra args; no stream-json flags are added.
type claudeCodeAdapter struct{}

func newClaudeCodeAdapter() Adapter { return &claudeCodeAdapter{} }

func (claudeCodeAdapter) StartThread(ctx context.Context, client *rpcclient.Client, cwd string, policy Policy) (string, string, error) {
	return uuid.NewString(), "", nil
}

func (claudeCodeAdapter) SendTurn(ctx context.Context, client *rpcclient.Client, threadID, taskID, messageID, text string) error {
	params := map[string]interface{}{
		"sessionId": threadID,
		"message": map[string]interface{}{
			"messageId": messageID,
			"parts":     []map[string]string{{"text": text}},
		},
	}
	_, err := client.Call(ctx, "session/turn", params)
	return err
}
