// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package termmux

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSpawnsAndInputEchoes(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Open("s1", "", "/bin/sh", 80, 24)
	require.NoError(t, err)

	out, cancel := sess.Subscribe()
	defer cancel()

	sess.Input([]byte("echo hi\n"))

	found := false
	deadline := time.After(3 * time.Second)
	for !found {
		select {
		case chunk := <-out:
			if strings.Contains(string(chunk), "hi") {
				found = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for echoed output")
		}
	}

	r.Close("s1")
}

func TestInputAfterCloseIsNoop(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Open("s2", "", "/bin/sh", 80, 24)
	require.NoError(t, err)

	r.Close("s2")
	time.Sleep(50 * time.Millisecond)

	assert.NotPanics(t, func() {
		sess.Input([]byte("echo should-not-run\n"))
	})
	assert.Equal(t, StateExited, sess.State())
}

func TestReconnectByIDResumesSameSession(t *testing.T) {
	r := NewRegistry()
	first, err := r.Open("s3", "", "/bin/sh", 80, 24)
	require.NoError(t, err)

	again, err := r.Open("s3", "", "/bin/sh", 80, 24)
	require.NoError(t, err)

	assert.Same(t, first, again)
	r.Close("s3")
}

func TestFrameRoundTrip(t *testing.T) {
	frame := encodeFrame("abc", []byte("payload"))
	id, payload, ok := decodeFrame(frame)
	require.True(t, ok)
	assert.Equal(t, "abc", id)
	assert.Equal(t, []byte("payload"), payload)
}
