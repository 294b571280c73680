// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"sync"
	"time"
)

// AggregateCache wraps a Scanner with a short process-wide TTL so
// repeated HTTP polls for totals don't each re-walk every archive root
// (spec §4.6 Caching, second layer).
type AggregateCache struct {
	scanner *Scanner
	ttl     time.Duration

	mu       sync.Mutex
	sessions []HistoricalSession
	expires  time.Time
}

// NewAggregateCache wraps scanner with the given TTL.
func NewAggregateCache(scanner *Scanner, ttl time.Duration) *AggregateCache {
	return &AggregateCache{scanner: scanner, ttl: ttl}
}

// Sessions returns every reconstructed session across all tools,
// reusing the cached result until the TTL expires.
func (c *AggregateCache) Sessions() ([]HistoricalSession, error) {
	c.mu.Lock()
	if time.Now().Before(c.expires) {
		sessions := c.sessions
		c.mu.Unlock()
		return sessions, nil
	}
	c.mu.Unlock()

	sessions, err := c.scanner.ScanAll()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sessions = sessions
	c.expires = time.Now().Add(c.ttl)
	c.mu.Unlock()
	return sessions, nil
}

// Invalidate forces the next Sessions call to rescan immediately,
// called when the fsnotify watch loop observes a change.
func (c *AggregateCache) Invalidate() {
	c.mu.Lock()
	c.expires = time.Time{}
	c.mu.Unlock()
}
