// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nullstack-dev/deskbridge/internal/rpcclient"
)

// codexAdapter speaks Codex's documented `thread/start` / `turn/send`
// JSON-RPC methods directly over rpcclient's generic framing.
type codexAdapter struct{}

func newCodexAdapter() Adapter { return &codexAdapter{} }

func (codexAdapter) StartThread(ctx context.Context, client *rpcclient.Client, cwd string, policy Policy) (string, string, error) {
	params := map[string]interface{}{
		"cwd":            cwd,
		"approvalPolicy": policy.ApprovalPolicy,
		"sandboxPolicy":  policy.SandboxPolicy,
	}
	result, err := client.Call(ctx, "thread/start", params)
	if err != nil {
		return "", "", err
	}

	var parsed struct {
		Thread struct {
			ID          string `json:"id"`
			ArchivePath string `json:"archivePath"`
		} `json:"thread"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return "", "", fmt.Errorf("parse thread/start result: %w", err)
	}
	return parsed.Thread.ID, parsed.Thread.ArchivePath, nil
}

func (codexAdapter) SendTurn(ctx context.Context, client *rpcclient.Client, threadID, taskID, messageID, text string) error {
	params := map[string]interface{}{
		"threadId": threadID,
		"message": map[string]interface{}{
			"messageId": messageID,
			"parts":     []map[string]string{{"text": text}},
		},
	}
	_, err := client.Call(ctx, "turn/send", params)
	return err
}
