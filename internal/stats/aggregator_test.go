// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nullstack-dev/deskbridge/internal/archive"
)

func session(cwd string, lastEvent time.Time, input int) archive.HistoricalSession {
	return archive.HistoricalSession{
		Cwd:         cwd,
		LastEventAt: lastEvent,
		TokenUsage:  archive.TokenUsage{InputTokens: input},
	}
}

func TestProjectTotalNormalizesCaseAndTrailingSeparator(t *testing.T) {
	sessions := []archive.HistoricalSession{
		session("/Users/me/Work/", time.Now(), 10),
		session("/users/me/work", time.Now(), 5),
		session("/elsewhere", time.Now(), 999),
	}

	usage, count := ProjectTotal(sessions, "/users/me/work/")
	assert.Equal(t, 2, count)
	assert.Equal(t, 15, usage.InputTokens)
}

func TestSevenDayWindowZeroFillsEmptyBuckets(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local)
	sessions := []archive.HistoricalSession{
		session("/w", now, 7),
		session("/w", now.AddDate(0, 0, -6), 3),
	}

	buckets := SevenDayWindow(sessions, now)
	assert.Len(t, buckets, 7)
	assert.Equal(t, localDate(now.AddDate(0, 0, -6)), buckets[0].Date)
	assert.Equal(t, 3, buckets[0].Usage.InputTokens)
	assert.Equal(t, localDate(now), buckets[6].Date)
	assert.Equal(t, 7, buckets[6].Usage.InputTokens)

	for _, b := range buckets[1:6] {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Usage.InputTokens)
	}
}

func TestTotalSumsAllSessions(t *testing.T) {
	sessions := []archive.HistoricalSession{
		session("/a", time.Now(), 10),
		session("/b", time.Now(), 20),
	}
	assert.Equal(t, 30, Total(sessions).InputTokens)
}
