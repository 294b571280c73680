// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullstack-dev/deskbridge/internal/launcher"
)

type stubResolver struct{}

func (stubResolver) ResolveWorkdir(projectID string) (string, bool) { return "", false }

// childScript returns a spawn resolver for a shell child that answers
// thread/start with a fixed thread id, logs every received request line
// to logPath, then for turn/send emits two notifications for the
// precomputed agent message id (one non-final, one final) before
// replying to the turn/send call itself.
func childScript(t *testing.T, logPath string) func(ctx context.Context) (*launcher.Spawn, error) {
	t.Helper()
	script := `
log() { printf '%s\n' "$1" >> "` + logPath + `"; }
IFS= read -r req1; log "$req1"
id1=$(printf '%s' "$req1" | sed -n 's/.*"id":\([0-9]*\).*/\1/p')
printf '{"jsonrpc":"2.0","id":%s,"result":{"thread":{"id":"th-1"}}}\n' "$id1"
while IFS= read -r req; do
  log "$req"
  id=$(printf '%s' "$req" | sed -n 's/.*"id":\([0-9]*\).*/\1/p')
  mid=$(printf '%s' "$req" | sed -n 's/.*"messageId":"\([^"]*\)".*/\1/p')
  printf '{"jsonrpc":"2.0","method":"turn/notify","params":{"status":{"message":{"messageId":"%s","parts":[{"text":"hi"}]},"final":false}}}\n' "$mid"
  printf '{"jsonrpc":"2.0","method":"turn/notify","params":{"status":{"message":{"messageId":"%s","parts":[{"text":"hi"}]},"final":true}}}\n' "$mid"
  printf '{"jsonrpc":"2.0","id":%s,"result":{}}\n' "$id"
done
`
	return func(ctx context.Context) (*launcher.Spawn, error) {
		return &launcher.Spawn{Path: "/bin/sh", Argv: []string{"/bin/sh", "-c", script}}, nil
	}
}

func TestColdStartChatEmitsFinalAndClosesStream(t *testing.T) {
	logPath := t.TempDir() + "/reqs.log"
	gw := New(ToolCodex, Policy{ApprovalPolicy: "never", SandboxPolicy: "full-access"}, stubResolver{}, childScript(t, logPath))
	defer gw.Close()

	req := SendSubscribeRequest{}
	req.Params.TaskID = "t-1"
	req.Params.ContextID = "ctx-1"
	req.Params.Cwd = "/tmp/ws"
	req.Params.Message.MessageID = "m-1"
	req.Params.Message.Parts = []struct {
		Text string `json:"text"`
	}{{Text: "hello"}}

	rec := httptest.NewRecorder()
	err := gw.HandleSendSubscribe(context.Background(), req, rec)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, `"messageId":"msg-agent-t-1"`)
	assert.Contains(t, body, `"final":true`)
}

func TestThreadReuseIssuesThreadStartOnce(t *testing.T) {
	logPath := t.TempDir() + "/reqs.log"
	gw := New(ToolCodex, Policy{ApprovalPolicy: "never", SandboxPolicy: "full-access"}, stubResolver{}, childScript(t, logPath))
	defer gw.Close()

	for i, taskID := range []string{"t-1", "t-2"} {
		req := SendSubscribeRequest{}
		req.Params.TaskID = taskID
		req.Params.ContextID = "ctx-1"
		req.Params.Cwd = "/tmp/ws"
		req.Params.Message.MessageID = "m-" + taskID
		req.Params.Message.Parts = []struct {
			Text string `json:"text"`
		}{{Text: "hi"}}
		rec := httptest.NewRecorder()
		require.NoError(t, gw.HandleSendSubscribe(context.Background(), req, rec), "turn %d", i)
	}

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	count := strings.Count(string(data), `"thread/start"`)
	assert.Equal(t, 1, count)
}
