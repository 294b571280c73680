// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package archive implements the Session Archive Scanner (spec §4.6):
// it walks a per-tool, per-user on-disk archive of historical agent
// sessions and reconstructs per-session timelines without ever mutating
// the archive.
package archive

import "time"

// EventKind is the semantic (not wire) discriminator for one archive
// record (spec §4.6).
type EventKind string

const (
	EventSessionMeta       EventKind = "session-meta"
	EventMessage           EventKind = "message"
	EventFunctionCall      EventKind = "function-call"
	EventFunctionResult    EventKind = "function-result"
	EventReasoningStart    EventKind = "agent-reasoning-start"
	EventReasoningEnd      EventKind = "agent-reasoning-end"
	EventGenerationStart   EventKind = "generation-start"
	EventGenerationEnd     EventKind = "generation-end"
	EventTokenCount        EventKind = "token-count"
	EventOther             EventKind = "other"
)

// TokenUsage is the fixed-shape bag of four counters (spec GLOSSARY).
type TokenUsage struct {
	InputTokens          int `json:"inputTokens"`
	CachedInputTokens    int `json:"cachedInputTokens"`
	OutputTokens         int `json:"outputTokens"`
	ReasoningOutputTokens int `json:"reasoningOutputTokens"`
}

// Add accumulates other into u, returning the sum (additive composition,
// spec §3 Token Usage entity).
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:           u.InputTokens + other.InputTokens,
		CachedInputTokens:     u.CachedInputTokens + other.CachedInputTokens,
		OutputTokens:          u.OutputTokens + other.OutputTokens,
		ReasoningOutputTokens: u.ReasoningOutputTokens + other.ReasoningOutputTokens,
	}
}

// Record is one parsed archive line, in the tool-agnostic shape the
// timeline reconstruction algorithm consumes.
type Record struct {
	Time   time.Time
	Kind   EventKind
	Usage  TokenUsage
	Cwd    string // only meaningful for EventSessionMeta
}

// SpanKind is the activity label for a reconstructed Timeline Span.
type SpanKind string

const (
	SpanTool    SpanKind = "tool"
	SpanThink   SpanKind = "think"
	SpanGen     SpanKind = "gen"
	SpanWaiting SpanKind = "waiting"
)

// TimelineSpan is a contiguous, non-overlapping slice of a session's
// duration (spec §3 Timeline Span entity).
type TimelineSpan struct {
	Kind       SpanKind `json:"kind"`
	DurationMs int64    `json:"durationMs"`
	TokenCount int      `json:"tokenCount"`
	EventCount int      `json:"eventCount"`
}

// HistoricalSession is the read-only, derived reconstruction of one
// archive file (spec §3 Historical Session entity).
type HistoricalSession struct {
	Path          string              `json:"path"`
	ID            string              `json:"id"`
	Cwd           string              `json:"cwd"`
	CreatedAt     time.Time           `json:"createdAt"`
	LastEventAt   time.Time           `json:"lastEventAt"`
	DurationMs    int64               `json:"durationMs"`
	EventCounts   map[EventKind]int   `json:"eventCounts"`
	TokenUsage    TokenUsage          `json:"tokenUsage"`
	Spans         []TimelineSpan      `json:"spans"`
	Partial       bool                `json:"partial"`
}
