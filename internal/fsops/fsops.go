// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package fsops implements the filesystem list/read/content-search
// surface for one bound workspace (spec §6). Every path is resolved
// relative to a root and rejected if it escapes it; content search
// uses stdlib regexp/bufio rather than shelling to an external search
// binary (see the grounding ledger for why).
package fsops

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

const maxReadBytes = 1 << 20 // 1MiB; larger files are truncated

// Workspace binds filesystem operations to one root directory.
type Workspace struct {
	root string
}

// New binds a Workspace to root. root must be an absolute, existing
// directory.
func New(root string) *Workspace {
	return &Workspace{root: filepath.Clean(root)}
}

// resolve maps a client-supplied relative path to an absolute path
// inside the workspace root, rejecting any attempt to escape it.
func (w *Workspace) resolve(rel string) (string, error) {
	abs := filepath.Join(w.root, rel)
	if abs != w.root && !strings.HasPrefix(abs, w.root+string(filepath.Separator)) {
		return "", apierr.InvalidArgument("path %q escapes the workspace root", rel)
	}
	return abs, nil
}

// Entry is one child of a listed directory.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ListResult answers the "Filesystem list" endpoint.
type ListResult struct {
	CurrentPath string  `json:"currentPath"`
	Directories []Entry `json:"directories"`
	Files       []Entry `json:"files"`
}

// List returns the immediate children of rel, directories and files
// separated and each sorted by name.
func (w *Workspace) List(rel string) (ListResult, error) {
	abs, err := w.resolve(rel)
	if err != nil {
		return ListResult{}, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return ListResult{}, apierr.Wrap(apierr.KindNotFound, "list "+rel, err)
	}

	result := ListResult{CurrentPath: rel}
	for _, e := range entries {
		item := Entry{Name: e.Name(), Path: filepath.Join(rel, e.Name())}
		if e.IsDir() {
			result.Directories = append(result.Directories, item)
		} else {
			result.Files = append(result.Files, item)
		}
	}
	sort.Slice(result.Directories, func(i, j int) bool { return result.Directories[i].Name < result.Directories[j].Name })
	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Name < result.Files[j].Name })
	return result, nil
}

// ReadResult answers the "Read file" endpoint.
type ReadResult struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	IsBinary  bool   `json:"isBinary"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Read returns rel's content, truncated at maxReadBytes and flagged
// binary if it fails a UTF-8 validity check on the read prefix.
func (w *Workspace) Read(rel string) (ReadResult, error) {
	abs, err := w.resolve(rel)
	if err != nil {
		return ReadResult{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ReadResult{}, apierr.Wrap(apierr.KindNotFound, "read "+rel, err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return ReadResult{}, apierr.Wrap(apierr.KindNotFound, "read "+rel, err)
	}
	defer f.Close()

	limit := info.Size()
	truncated := false
	if limit > maxReadBytes {
		limit = maxReadBytes
		truncated = true
	}

	buf := make([]byte, limit)
	n, _ := f.Read(buf)
	buf = buf[:n]

	return ReadResult{
		Content:   string(buf),
		Truncated: truncated,
		IsBinary:  !utf8.Valid(buf) || bytes.ContainsRune(buf, 0),
		SizeBytes: info.Size(),
	}, nil
}

// Match is one content-search hit.
type Match struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// SearchResult answers the "Content search" endpoint.
type SearchResult struct {
	Matches      []Match `json:"matches"`
	TotalMatches int     `json:"totalMatches"`
	Truncated    bool    `json:"truncated"`
}

// Search walks rel recursively for query, as a literal substring or a
// regular expression.
func (w *Workspace) Search(rel, query string, isRegex, caseSensitive bool, maxResults int) (SearchResult, error) {
	abs, err := w.resolve(rel)
	if err != nil {
		return SearchResult{}, err
	}
	if maxResults <= 0 {
		maxResults = 500
	}

	var matcher func(string) bool
	if isRegex {
		pattern := query
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return SearchResult{}, apierr.InvalidArgument("invalid search pattern: %v", err)
		}
		matcher = re.MatchString
	} else {
		needle := query
		matcher = func(line string) bool {
			if !caseSensitive {
				return strings.Contains(strings.ToLower(line), strings.ToLower(needle))
			}
			return strings.Contains(line, needle)
		}
	}

	var result SearchResult
	err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if result.TotalMatches >= maxResults {
			result.Truncated = true
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		relPath, _ := filepath.Rel(w.root, path)
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if matcher(line) {
				result.TotalMatches++
				if len(result.Matches) < maxResults {
					result.Matches = append(result.Matches, Match{Path: relPath, Line: lineNo, Text: line})
				} else {
					result.Truncated = true
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return SearchResult{}, err
	}
	return result, nil
}
