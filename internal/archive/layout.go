// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ToolKind names which CLI's archive a Layout understands.
type ToolKind string

const (
	ToolCodex      ToolKind = "codex"
	ToolClaudeCode ToolKind = "claude-code"
)

// Layout abstracts the on-disk shape of one tool's session archive so
// the scanner's timeline reconstruction never has to know about either
// tool's wire format directly (spec §4.6: "per-tool adapters, one
// reconstruction algorithm").
type Layout interface {
	// Discover walks root and returns every session file path, oldest
	// first by filename/path ordering.
	Discover(root string) ([]string, error)

	// SessionID derives a stable id for path. Two scans of an
	// unmodified file must return the same id.
	SessionID(path string) string

	// ParseLine classifies one JSONL line into a tool-agnostic Record.
	// ok is false for a line that parses as JSON but carries no
	// semantic content the timeline cares about (not a parse error).
	ParseLine(line []byte) (rec Record, ok bool)
}

// LayoutFor returns the Layout for kind.
func LayoutFor(kind ToolKind) Layout {
	switch kind {
	case ToolCodex:
		return codexLayout{}
	case ToolClaudeCode:
		return claudeCodeLayout{}
	default:
		return nil
	}
}

// discoverJSONL walks root for *.jsonl files, sorted for determinism.
func discoverJSONL(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return nil // root itself missing: empty archive
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".jsonl") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
