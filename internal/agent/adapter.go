// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the Agent Session Manager and Agent Gateway
// (spec §4.3, §4.4): one long-lived child JSON-RPC process multiplexed
// across many logical chat sessions, translated to an A2A-shaped SSE
// stream for the HTTP layer.
package agent

import (
	"context"

	"github.com/nullstack-dev/deskbridge/internal/rpcclient"
)

// ToolKind identifies which external CLI a Gateway talks to.
type ToolKind string

const (
	ToolCodex      ToolKind = "codex"
	ToolClaudeCode ToolKind = "claude"
)

// Policy is the system-fixed approval/sandbox policy (spec §4.3); never
// proxied from the browser.
type Policy struct {
	ApprovalPolicy string
	SandboxPolicy  string
}

// Adapter hides the wire-level differences between Codex's and Claude
// Code's protocols behind one interface (spec §9 "one interface, two
// implementations").
type Adapter interface {
	// StartThread creates a new agent-side conversation rooted at cwd
	// and returns its thread id and, if the tool records one, the
	// on-disk archive path it will write to.
	StartThread(ctx context.Context, client *rpcclient.Client, cwd string, policy Policy) (threadID string, archivePath string, err error)

	// SendTurn issues one user turn against an existing thread. taskID
	// and messageID let the gateway correlate resulting notifications.
	SendTurn(ctx context.Context, client *rpcclient.Client, threadID, taskID, messageID, text string) error
}
