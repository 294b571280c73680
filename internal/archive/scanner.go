// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

const maxLineSize = 1 << 20 // 1MiB, generous for a single JSONL record

// fileCacheEntry memoizes one file's reconstruction against the
// (mtime, size) pair that produced it (spec §4.6 Caching).
type fileCacheEntry struct {
	modTime time.Time
	size    int64
	session HistoricalSession
}

// Scanner is the process-wide Session Archive Scanner. It is safe for
// concurrent use.
type Scanner struct {
	roots map[ToolKind]string

	mu        sync.Mutex
	fileCache map[string]fileCacheEntry
}

// NewScanner builds a Scanner rooted at the given per-tool archive
// directories. A missing root is not an error; it yields zero sessions
// for that tool (spec §4.6 Failure semantics).
func NewScanner(roots map[ToolKind]string) *Scanner {
	return &Scanner{
		roots:     roots,
		fileCache: make(map[string]fileCacheEntry),
	}
}

// Invalidate drops the cached reconstruction for path, forcing the next
// scan to reparse it. Called from the fsnotify watch loop.
func (s *Scanner) Invalidate(path string) {
	s.mu.Lock()
	delete(s.fileCache, path)
	s.mu.Unlock()
}

// ScanAll reconstructs every session across every configured tool root.
func (s *Scanner) ScanAll() ([]HistoricalSession, error) {
	var out []HistoricalSession
	for kind, root := range s.roots {
		sessions, err := s.ScanTool(kind, root)
		if err != nil {
			return nil, err
		}
		out = append(out, sessions...)
	}
	return out, nil
}

// ScanTool reconstructs every session under one tool's archive root.
func (s *Scanner) ScanTool(kind ToolKind, root string) ([]HistoricalSession, error) {
	layout := LayoutFor(kind)
	if layout == nil {
		return nil, nil
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	paths, err := layout.Discover(root)
	if err != nil {
		return nil, err
	}

	sessions := make([]HistoricalSession, 0, len(paths))
	for _, path := range paths {
		sess, err := s.scanFile(layout, path)
		if err != nil {
			log.Printf("archive: skipping %s: %v", path, err)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *Scanner) scanFile(layout Layout, path string) (HistoricalSession, error) {
	info, err := os.Stat(path)
	if err != nil {
		return HistoricalSession{}, err
	}

	s.mu.Lock()
	if cached, ok := s.fileCache[path]; ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		s.mu.Unlock()
		return cached.session, nil
	}
	s.mu.Unlock()

	sess, err := parseSessionFile(layout, path)
	if err != nil {
		return HistoricalSession{}, err
	}

	s.mu.Lock()
	s.fileCache[path] = fileCacheEntry{modTime: info.ModTime(), size: info.Size(), session: sess}
	s.mu.Unlock()
	return sess, nil
}

type timestampOnly struct {
	Timestamp time.Time `json:"timestamp"`
}

// parseSessionFile reads path line by line, classifying each line via
// layout and feeding the result into the timeline reconstruction. A
// line that is not valid JSON marks the session partial but does not
// abort the scan (spec §4.6 Tie-breaks and edge cases).
func parseSessionFile(layout Layout, path string) (HistoricalSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return HistoricalSession{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	partial := false

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			partial = true
			records = append(records, Record{Kind: EventOther})
			continue
		}

		if rec, ok := layout.ParseLine(line); ok {
			records = append(records, rec)
			continue
		}

		var ts timestampOnly
		_ = json.Unmarshal(line, &ts)
		records = append(records, Record{Time: ts.Timestamp, Kind: EventOther})
	}
	if err := scanner.Err(); err != nil {
		partial = true
	}

	tl := reconstructTimeline(records)
	return HistoricalSession{
		Path:        path,
		ID:          layout.SessionID(path),
		Cwd:         tl.Cwd,
		CreatedAt:   tl.CreatedAt,
		LastEventAt: tl.LastEventAt,
		DurationMs:  tl.DurationMs,
		EventCounts: tl.EventCounts,
		TokenUsage:  tl.Usage,
		Spans:       tl.Spans,
		Partial:     partial,
	}, nil
}
