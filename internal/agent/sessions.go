// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nullstack-dev/deskbridge/internal/rpcclient"
)

// thread binds a logical session id to an agent-assigned thread id.
type thread struct {
	id          string
	cwd         string
	archivePath string
}

// SessionIndex maps logical session ids to agent threads (spec §4.3).
// Concurrent getOrCreateThread calls for the same session id collapse
// to one thread/start via singleflight, the same family of guard the
// teacher uses a start-lock for around child spawn.
type SessionIndex struct {
	adapter Adapter
	policy  Policy

	mu      sync.RWMutex
	threads map[string]*thread

	group singleflight.Group
}

func newSessionIndex(adapter Adapter, policy Policy) *SessionIndex {
	return &SessionIndex{
		adapter: adapter,
		policy:  policy,
		threads: make(map[string]*thread),
	}
}

// GetOrCreateThread returns the thread id bound to sessionID, creating it
// (and starting the child if needed) on first use. Concurrent calls for
// the same sessionID result in exactly one thread/start (spec §8.3).
func (s *SessionIndex) GetOrCreateThread(ctx context.Context, client *rpcclient.Client, sessionID, cwd string) (string, error) {
	s.mu.RLock()
	if t, ok := s.threads[sessionID]; ok {
		s.mu.RUnlock()
		return t.id, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do(sessionID, func() (interface{}, error) {
		s.mu.RLock()
		if t, ok := s.threads[sessionID]; ok {
			s.mu.RUnlock()
			return t.id, nil
		}
		s.mu.RUnlock()

		id, archivePath, err := s.adapter.StartThread(ctx, client, cwd, s.policy)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.threads[sessionID] = &thread{id: id, cwd: cwd, archivePath: archivePath}
		s.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Drop removes a session's thread binding (explicit drop, spec §3 entity
// lifecycle: "lives ... until explicitly dropped").
func (s *SessionIndex) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.threads, sessionID)
	s.mu.Unlock()
}
