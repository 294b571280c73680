// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package rpcclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullstack-dev/deskbridge/internal/launcher"
)

// echoSpawn builds a spawn descriptor for a tiny POSIX shell child that
// echoes back a JSON-RPC result for every request line it reads, so the
// client's framing/correlation logic can be exercised without a real
// agent CLI installed.
func echoSpawn(t *testing.T) func(ctx context.Context) (*launcher.Spawn, error) {
	t.Helper()
	script := `while IFS= read -r line; do
  id=$(printf '%s' "$line" | sed -n 's/.*"id":\([0-9]*\).*/\1/p')
  printf '{"jsonrpc":"2.0","id":%s,"result":{"echo":true}}\n' "$id"
done`
	return func(ctx context.Context) (*launcher.Spawn, error) {
		return &launcher.Spawn{Path: "/bin/sh", Argv: []string{"/bin/sh", "-c", script}}, nil
	}
}

func exitImmediatelySpawn() func(ctx context.Context) (*launcher.Spawn, error) {
	return func(ctx context.Context) (*launcher.Spawn, error) {
		return &launcher.Spawn{Path: "/bin/sh", Argv: []string{"/bin/sh", "-c", "read line; exit 7"}}, nil
	}
}

func TestCallConcurrentCallersGetOwnResult(t *testing.T) {
	c := New(echoSpawn(t))
	defer c.Close()

	const n = 20
	var wg sync.WaitGroup
	var failures int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Call(context.Background(), "noop", map[string]int{})
			if err != nil {
				atomic.AddInt32(&failures, 1)
				return
			}
			assert.Contains(t, string(res), "echo")
		}()
	}
	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&failures))
}

func TestCallFailsPendingOnChildExit(t *testing.T) {
	c := New(exitImmediatelySpawn())
	defer c.Close()

	ch, cancel := c.Subscribe()
	defer cancel()

	_, err := c.Call(context.Background(), "noop", nil)
	assert.Error(t, err)

	select {
	case ev := <-ch:
		assert.Error(t, ev.ExitErr)
	case <-time.After(2 * time.Second):
		t.Fatal("expected exit event")
	}
}

func TestEnsureStartedCollapsesConcurrentSpawns(t *testing.T) {
	var spawnCount int32
	spawnFn := func(ctx context.Context) (*launcher.Spawn, error) {
		atomic.AddInt32(&spawnCount, 1)
		return &launcher.Spawn{Path: "/bin/sh", Argv: []string{"/bin/sh", "-c", "sleep 1"}}, nil
	}
	c := New(spawnFn)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, c.EnsureStarted(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&spawnCount))
}
