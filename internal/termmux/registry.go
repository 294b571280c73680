// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package termmux

import (
	"sync"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

// Registry is the process-wide PTY Session Registry. A session created
// through Open survives a WebSocket disconnect (detach policy, spec
// §4.5 Open Question) and can be re-attached by id from a later
// connection.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open creates (or, if id already exists and is still Running, returns)
// a session. Reconnect-by-id resumes the existing child rather than
// spawning a new one, consistent with the detach policy (spec §8.9).
func (r *Registry) Open(id, cwd, shell string, cols, rows int) (*Session, error) {
	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok && existing.State() != StateExited {
		r.mu.Unlock()
		return existing, nil
	}
	r.mu.Unlock()

	s := newSession(id, cwd, shell, cols, rows)
	if err := s.spawn(); err != nil {
		return nil, apierr.Wrap(apierr.KindTransport, "spawn pty", err)
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns the session for id, if any.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close kills and removes the session for id (explicit `close`, always
// kills regardless of socket-loss policy).
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Kill()
	}
}

// Shutdown kills every session, used on server shutdown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Kill()
	}
}
