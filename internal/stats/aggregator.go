// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package stats implements the Statistics Aggregator (spec §4.7): pure
// derivations over the Session Archive Scanner's output. Nothing here
// touches disk or a clock directly; callers pass in "now" so the
// per-day bucketing stays testable.
package stats

import (
	"strings"
	"time"

	"github.com/nullstack-dev/deskbridge/internal/archive"
)

// NormalizeWorkspace matches two workspace paths case-insensitively
// with a stripped trailing separator, the comparison spec §4.7 names
// for per-project totals.
func NormalizeWorkspace(path string) string {
	path = strings.TrimRight(path, "/\\")
	return strings.ToLower(path)
}

// ProjectTotal sums TokenUsage and session count for every Historical
// Session whose cwd normalizes to workspace.
func ProjectTotal(sessions []archive.HistoricalSession, workspace string) (archive.TokenUsage, int) {
	want := NormalizeWorkspace(workspace)
	var usage archive.TokenUsage
	count := 0
	for _, s := range sessions {
		if NormalizeWorkspace(s.Cwd) == want {
			usage = usage.Add(s.TokenUsage)
			count++
		}
	}
	return usage, count
}

// DayBucket is one local-date's aggregate token usage.
type DayBucket struct {
	Date  string `json:"date"` // YYYY-MM-DD, local
	Usage archive.TokenUsage `json:"usage"`
	Count int                `json:"sessionCount"`
}

// localDate buckets by the local date of the session's last event, not
// UTC, per spec §4.7.
func localDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// SevenDayWindow returns one bucket per local date in [now-6, now],
// oldest first, with empty buckets present and zeroed.
func SevenDayWindow(sessions []archive.HistoricalSession, now time.Time) []DayBucket {
	return Window(sessions, now, 7)
}

// Window returns one bucket per local date in [now-(days-1), now],
// oldest first, with empty buckets present and zeroed. It generalizes
// SevenDayWindow to the "Token usage (daily)" endpoint's days param.
func Window(sessions []archive.HistoricalSession, now time.Time, days int) []DayBucket {
	if days <= 0 {
		days = 7
	}
	buckets := make(map[string]*DayBucket, days)
	order := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := localDate(now.AddDate(0, 0, -i))
		buckets[date] = &DayBucket{Date: date}
		order = append(order, date)
	}

	for _, s := range sessions {
		date := localDate(s.LastEventAt)
		b, ok := buckets[date]
		if !ok {
			continue // outside the window
		}
		b.Usage = b.Usage.Add(s.TokenUsage)
		b.Count++
	}

	out := make([]DayBucket, 0, len(order))
	for _, date := range order {
		out = append(out, *buckets[date])
	}
	return out
}

// Total sums TokenUsage across every session, regardless of project or
// date, for the "total" token-usage endpoint.
func Total(sessions []archive.HistoricalSession) archive.TokenUsage {
	var usage archive.TokenUsage
	for _, s := range sessions {
		usage = usage.Add(s.TokenUsage)
	}
	return usage
}
