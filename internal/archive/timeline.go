// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"sort"
	"time"
)

// activityEdge classifies a Record's effect on the current activity, per
// the timeline reconstruction algorithm: start-events open an activity,
// end-events close it to idle, everything else only contributes to
// counters.
type activityEdge int

const (
	edgeNone activityEdge = iota
	edgeStart
	edgeEnd
)

func edgeFor(kind EventKind) (activityEdge, SpanKind) {
	switch kind {
	case EventFunctionCall:
		return edgeStart, SpanTool
	case EventFunctionResult:
		return edgeEnd, ""
	case EventReasoningStart:
		return edgeStart, SpanThink
	case EventReasoningEnd:
		return edgeEnd, ""
	case EventGenerationStart:
		return edgeStart, SpanGen
	case EventGenerationEnd:
		return edgeEnd, ""
	default:
		return edgeNone, ""
	}
}

type timelineResult struct {
	Spans       []TimelineSpan
	EventCounts map[EventKind]int
	Usage       TokenUsage
	Cwd         string
	CreatedAt   time.Time
	LastEventAt time.Time
	DurationMs  int64
}

// reconstructTimeline implements the chronological-walk algorithm: a
// cursor timestamp plus a current activity in {tool, think, gen, idle}.
// Nested/overlapping starts coalesce whatever their activity — the
// outermost start/end pair wins, inner ones only count.
func reconstructTimeline(records []Record) timelineResult {
	result := timelineResult{EventCounts: make(map[EventKind]int)}
	if len(records) == 0 {
		return result
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})

	// cursor marks the start of the current (open) span and only moves at
	// an activity-change boundary. lastEventTime tracks the timestamp of
	// the most recent event seen, for clock-backward clamping and for
	// LastEventAt/DurationMs — it must never feed closeSpan, or a
	// token-count/message event landing inside an open span would eat
	// into that span's duration.
	cursor := records[0].Time
	lastEventTime := cursor
	result.CreatedAt = cursor

	var activeKind SpanKind
	depth := 0
	var spanTokens int
	var spanEvents int

	closeSpan := func(end time.Time, kind SpanKind, tokens, events int) {
		if kind == "" {
			return
		}
		dur := end.Sub(cursor)
		if dur <= 0 {
			return // zero/negative duration spans are elided
		}
		result.Spans = append(result.Spans, TimelineSpan{
			Kind:       kind,
			DurationMs: dur.Milliseconds(),
			TokenCount: tokens,
			EventCount: events,
		})
	}

	for _, rec := range records {
		t := rec.Time
		if t.Before(lastEventTime) {
			t = lastEventTime // clock going backward: clamp to previous event
		}

		result.EventCounts[rec.Kind]++

		if rec.Kind == EventSessionMeta {
			if result.Cwd == "" {
				result.Cwd = rec.Cwd
			}
			lastEventTime = t
			result.LastEventAt = t
			continue
		}

		if rec.Kind == EventTokenCount {
			result.Usage = result.Usage.Add(rec.Usage)
			if activeKind == SpanThink || activeKind == SpanGen {
				spanTokens += rec.Usage.InputTokens + rec.Usage.OutputTokens +
					rec.Usage.CachedInputTokens + rec.Usage.ReasoningOutputTokens
			}
			lastEventTime = t
			result.LastEventAt = t
			continue
		}

		edge, kind := edgeFor(rec.Kind)
		switch edge {
		case edgeStart:
			if depth == 0 {
				priorKind := SpanWaiting
				if activeKind != "" {
					priorKind = activeKind
				}
				closeSpan(t, priorKind, spanTokens, spanEvents)
				cursor = t
				activeKind = kind
				spanTokens = 0
				spanEvents = 0
			}
			depth++
			spanEvents++

		case edgeEnd:
			if depth > 0 {
				depth--
			}
			spanEvents++
			if depth == 0 {
				closeSpan(t, activeKind, spanTokens, spanEvents)
				cursor = t
				activeKind = ""
				spanTokens = 0
				spanEvents = 0
			}

		default:
			// message / other: counted, no activity change.
			spanEvents++
		}

		lastEventTime = t
		result.LastEventAt = t
	}

	// EOF: close whatever is still open, including a trailing idle
	// span, using the last event's timestamp as the end.
	finalKind := activeKind
	if finalKind == "" {
		finalKind = SpanWaiting
	}
	closeSpan(result.LastEventAt, finalKind, spanTokens, spanEvents)

	result.DurationMs = result.LastEventAt.Sub(result.CreatedAt).Milliseconds()
	return result
}
