// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// codexEventLine builds one codex JSONL line with an absolute
// millisecond-offset timestamp from an arbitrary fixed epoch, so the
// literal scenario's relative offsets are reproducible.
var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func at(offsetMs int) string {
	return epoch.Add(time.Duration(offsetMs) * time.Millisecond).Format(time.RFC3339Nano)
}

func TestScanArchiveScenario(t *testing.T) {
	dir := t.TempDir()

	fileA := filepath.Join(dir, "a.jsonl")
	lines := []string{
		`{"type":"session_meta","timestamp":"` + at(0) + `","payload":{"cwd":"/w"}}`,
		`{"type":"response_item","timestamp":"` + at(1000) + `","payload":{"type":"function_call"}}`,
		`{"type":"response_item","timestamp":"` + at(3000) + `","payload":{"type":"function_call_output"}}`,
		`{"type":"event_msg","timestamp":"` + at(3000) + `","payload":{"type":"generation_start"}}`,
		`{"type":"event_msg","timestamp":"` + at(4000) + `","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":10,"output_tokens":20}}}}`,
		`{"type":"event_msg","timestamp":"` + at(5000) + `","payload":{"type":"generation_end"}}`,
	}
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	writeFile(t, fileA, content)

	fileB := filepath.Join(dir, "b.jsonl")
	writeFile(t, fileB, "{not valid json\n")

	scanner := NewScanner(map[ToolKind]string{ToolCodex: dir})
	sessions, err := scanner.ScanTool(ToolCodex, dir)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var a, b HistoricalSession
	for _, s := range sessions {
		if s.Path == fileA {
			a = s
		} else {
			b = s
		}
	}

	require.False(t, a.Partial)
	require.Len(t, a.Spans, 3)
	assert.Equal(t, SpanWaiting, a.Spans[0].Kind)
	assert.Equal(t, int64(1000), a.Spans[0].DurationMs)
	assert.Equal(t, SpanTool, a.Spans[1].Kind)
	assert.Equal(t, int64(2000), a.Spans[1].DurationMs)
	assert.Equal(t, SpanGen, a.Spans[2].Kind)
	assert.Equal(t, int64(2000), a.Spans[2].DurationMs)
	assert.Equal(t, 30, a.Spans[2].TokenCount)
	assert.Equal(t, "/w", a.Cwd)

	assert.True(t, b.Partial)
	assert.Equal(t, 1, b.EventCounts[EventOther])
}

func TestSumOfSpanDurationsEqualsTotalDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jsonl")
	writeFile(t, path,
		`{"type":"session_meta","timestamp":"`+at(0)+`","payload":{"cwd":"/w"}}`+"\n"+
			`{"type":"response_item","timestamp":"`+at(500)+`","payload":{"type":"function_call"}}`+"\n"+
			`{"type":"response_item","timestamp":"`+at(1500)+`","payload":{"type":"function_call_output"}}`+"\n",
	)

	scanner := NewScanner(map[ToolKind]string{ToolCodex: dir})
	sessions, err := scanner.ScanTool(ToolCodex, dir)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	var sum int64
	for _, span := range sessions[0].Spans {
		sum += span.DurationMs
	}
	assert.InDelta(t, sessions[0].DurationMs, sum, 1)
}

func TestScanFileCacheReusesUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jsonl")
	writeFile(t, path, `{"type":"session_meta","timestamp":"`+at(0)+`","payload":{"cwd":"/w"}}`+"\n")

	scanner := NewScanner(map[ToolKind]string{ToolCodex: dir})
	first, err := scanner.ScanTool(ToolCodex, dir)
	require.NoError(t, err)
	require.Len(t, first, 1)
	firstID := first[0].ID

	second, err := scanner.ScanTool(ToolCodex, dir)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, firstID, second[0].ID)
}

func TestMissingArchiveRootYieldsEmptyNotError(t *testing.T) {
	scanner := NewScanner(map[ToolKind]string{ToolCodex: "/nonexistent/path/for/test"})
	sessions, err := scanner.ScanTool(ToolCodex, "/nonexistent/path/for/test")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
