// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeReportsPlatform(t *testing.T) {
	m := NewManager(map[string]string{"codex": "@openai/codex"})
	status := m.Probe(context.Background(), "codex", "/nonexistent/config.json")
	assert.NotEmpty(t, status.Platform)
	assert.False(t, status.ConfigExists)
}

func TestInstallToolUnknownToolErrors(t *testing.T) {
	m := NewManager(map[string]string{"codex": "@openai/codex"})
	_, err := m.InstallTool("not-a-tool")
	require.Error(t, err)
}

func TestJobLifecycleReachesTerminalStatus(t *testing.T) {
	m := NewManager(map[string]string{"codex": "@openai/codex"})
	id := m.startJob("sh", "-c", "echo hi")

	deadline := time.After(5 * time.Second)
	for {
		job, ok := m.JobStatusOf(id)
		require.True(t, ok)
		if job.Status != JobRunning {
			assert.Equal(t, JobSucceeded, job.Status)
			assert.Contains(t, job.Log, "hi")
			return
		}
		select {
		case <-deadline:
			t.Fatal("job did not reach a terminal status in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
