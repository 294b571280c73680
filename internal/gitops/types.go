// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package gitops shells out to the git binary for the repository
// panel's status/diff/log/stage/commit/push/pull surface. There is no
// pure-Go git implementation in the example corpus; every repo that
// touches git does so by invoking the real binary.
package gitops

// Status mirrors `git status --porcelain` for one working directory.
type Status struct {
	Clean     bool     `json:"clean"`
	Modified  []string `json:"modified"`
	Added     []string `json:"added"`
	Deleted   []string `json:"deleted"`
	Renamed   []string `json:"renamed"`
	Untracked []string `json:"untracked"`
}

// HasChanges reports whether Status carries any change.
func (s *Status) HasChanges() bool {
	if s.Clean {
		return false
	}
	return len(s.Modified) > 0 || len(s.Added) > 0 ||
		len(s.Deleted) > 0 || len(s.Renamed) > 0 || len(s.Untracked) > 0
}

// BranchInfo names the current branch or detached HEAD commit.
type BranchInfo struct {
	Name     string `json:"name,omitempty"`
	Detached bool   `json:"detached"`
	Commit   string `json:"commit,omitempty"`
}

// LogEntry is one `git log` line.
type LogEntry struct {
	Commit  string `json:"commit"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
}
