// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
	"github.com/nullstack-dev/deskbridge/internal/launcher"
	"github.com/nullstack-dev/deskbridge/internal/rpcclient"
)

// ProjectResolver resolves a project id to its bound working directory.
// Satisfied by internal/store.Store; kept as a narrow interface here so
// the gateway doesn't depend on the store package's full surface.
type ProjectResolver interface {
	ResolveWorkdir(projectID string) (string, bool)
}

// Gateway owns one child process per tool kind and exposes the A2A
// `tasks/sendSubscribe` translation described in spec §4.4.
type Gateway struct {
	kind     ToolKind
	client   *rpcclient.Client
	adapter  Adapter
	sessions *SessionIndex
	projects ProjectResolver
}

// New builds a Gateway for one tool kind. resolve constructs the spawn
// descriptor for that tool's child process (see internal/launcher).
func New(kind ToolKind, policy Policy, projects ProjectResolver, resolve func(ctx context.Context) (*launcher.Spawn, error)) *Gateway {
	var adapter Adapter
	switch kind {
	case ToolClaudeCode:
		adapter = newClaudeCodeAdapter()
	default:
		adapter = newCodexAdapter()
	}
	return &Gateway{
		kind:     kind,
		client:   rpcclient.New(resolve),
		adapter:  adapter,
		sessions: newSessionIndex(adapter, policy),
		projects: projects,
	}
}

// Close tears down the underlying child process.
func (g *Gateway) Close() error { return g.client.Close() }

// SendSubscribeRequest is the A2A JSON-RPC envelope body (spec §4.4).
type SendSubscribeRequest struct {
	ID     interface{} `json:"id"`
	Method string      `json:"method"`
	Params struct {
		TaskID    string `json:"taskId"`
		ContextID string `json:"contextId"`
		ProjectID string `json:"projectId"`
		Cwd       string `json:"cwd"`
		Message   struct {
			MessageID string `json:"messageId"`
			Parts     []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"message"`
	} `json:"params"`
}

// HandleSendSubscribe implements the full algorithm of spec §4.4 and
// writes an SSE stream to w until a final notification arrives, the
// child fails, or the client disconnects.
func (g *Gateway) HandleSendSubscribe(ctx context.Context, req SendSubscribeRequest, w http.ResponseWriter) error {
	cwd := req.Params.Cwd
	if req.Params.ProjectID != "" {
		resolved, ok := g.projects.ResolveWorkdir(req.Params.ProjectID)
		if !ok {
			return apierr.InvalidArgument("unknown projectId %q", req.Params.ProjectID)
		}
		cwd = resolved
	}
	if cwd == "" {
		return apierr.InvalidArgument("either projectId or cwd is required")
	}

	sessionID := req.Params.ContextID
	threadID, err := g.sessions.GetOrCreateThread(ctx, g.client, sessionID, cwd)
	if err != nil {
		return err
	}

	// Subscribe before sending the turn to avoid racing notifications
	// (spec §4.4 step 4).
	events, unsubscribe := g.client.Subscribe()
	defer unsubscribe()

	agentMessageID := "msg-agent-" + req.Params.TaskID

	var text string
	if len(req.Params.Message.Parts) > 0 {
		text = req.Params.Message.Parts[0].Text
	}
	if err := g.adapter.SendTurn(ctx, g.client, threadID, req.Params.TaskID, agentMessageID, text); err != nil {
		writeSSEError(w, req.Params.TaskID, err)
		return nil
	}

	return g.forward(ctx, w, events, req.Params.TaskID, agentMessageID, cwd)
}

// forward relays notifications matching this turn as SSE events, in
// arrival order, until a final one arrives or the subscription ends.
func (g *Gateway) forward(ctx context.Context, w http.ResponseWriter, events <-chan rpcclient.Event, taskID, agentMessageID, cwd string) error {
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			if flusher != nil {
				flusher.Flush()
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.ExitErr != nil {
				writeSSEError(w, taskID, ev.ExitErr)
				if flusher != nil {
					flusher.Flush()
				}
				return nil
			}
			if ev.StderrLine != "" {
				continue
			}
			if ev.Notification == nil {
				continue
			}

			status, final, messageID, ok := parseStatus(ev.Notification)
			if !ok {
				continue
			}
			// Notifications lacking a message id are accepted for the
			// duration of this turn's subscription (spec §4.4 step 7);
			// those carrying one must match the precomputed agent id.
			if messageID != "" && messageID != agentMessageID {
				continue
			}

			status = enrichStatus(status, cwd)
			writeSSEStatus(w, taskID, status, final)
			if flusher != nil {
				flusher.Flush()
			}

			if final {
				return nil
			}
		}
	}
}

func parseStatus(raw json.RawMessage) (status json.RawMessage, final bool, messageID string, ok bool) {
	var env struct {
		Params struct {
			Status struct {
				Final   bool `json:"final"`
				Message *struct {
					MessageID string `json:"messageId"`
				} `json:"message"`
			} `json:"status"`
		} `json:"params"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, "", false
	}
	if env.Params.Status.Message != nil {
		messageID = env.Params.Status.Message.MessageID
	}
	statusRaw, _ := json.Marshal(env.Params.Status)
	// Forward the child's status object verbatim so fields not named
	// above (message parts and the like) reach the client.
	var verbatim struct {
		Params struct {
			Status json.RawMessage `json:"status"`
		} `json:"params"`
	}
	if json.Unmarshal(raw, &verbatim) == nil && len(verbatim.Params.Status) > 0 && string(verbatim.Params.Status) != "null" {
		statusRaw = verbatim.Params.Status
	}
	return statusRaw, env.Params.Status.Final, messageID, true
}

func writeSSEStatus(w http.ResponseWriter, taskID string, status json.RawMessage, final bool) {
	envelope := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      taskID,
		"result": map[string]interface{}{
			"statusUpdate": json.RawMessage(status),
		},
	}
	writeSSE(w, envelope)
}

func writeSSEError(w http.ResponseWriter, taskID string, err error) {
	envelope := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      taskID,
		"error": map[string]interface{}{
			"message": apierr.Message(err),
		},
	}
	writeSSE(w, envelope)
}

func writeSSE(w http.ResponseWriter, envelope interface{}) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
