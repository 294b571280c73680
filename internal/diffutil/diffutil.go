// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package diffutil enriches Edit/Write tool-call notifications with a
// unified diff, the Go-native equivalent of the teacher's HTML-diff
// enrichment for its own single-tool transcript viewer — here produced
// as plain unified-diff text since there is no browser SPA to render
// HTML into.
package diffutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const maxSourceBytes = 1 << 20

// EditInput is the Edit tool's call shape: replace the first
// occurrence of OldString with NewString in FilePath.
type EditInput struct {
	FilePath  string `json:"file_path"`
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
}

// WriteInput is the Write tool's call shape: FilePath is replaced
// wholesale with Content.
type WriteInput struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

func resolvePath(path, cwd string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

// UnifiedDiffForEdit reads the pre-edit file content from disk and
// returns a unified diff against the proposed replacement. Returns
// ("", false) if the file cannot be read, is too large, or the
// old_string is not found — enrichment is best-effort and never fails
// the enclosing turn.
func UnifiedDiffForEdit(cwd string, in EditInput) (string, bool) {
	if in.FilePath == "" {
		return "", false
	}
	path := resolvePath(in.FilePath, cwd)

	data, err := os.ReadFile(path)
	if err != nil || len(data) > maxSourceBytes {
		return "", false
	}
	content := string(data)

	if !strings.Contains(content, in.OldString) {
		return "", false
	}
	updated := strings.Replace(content, in.OldString, in.NewString, 1)

	return render(in.FilePath, content, updated)
}

// UnifiedDiffForWrite diffs the file's current content (empty if it
// does not yet exist) against the proposed full replacement.
func UnifiedDiffForWrite(cwd string, in WriteInput) (string, bool) {
	if in.FilePath == "" {
		return "", false
	}
	path := resolvePath(in.FilePath, cwd)

	var before string
	if data, err := os.ReadFile(path); err == nil {
		if len(data) > maxSourceBytes {
			return "", false
		}
		before = string(data)
	}

	return render(in.FilePath, before, in.Content)
}

func render(name, before, after string) (string, bool) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}
