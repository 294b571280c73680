// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

// Repo binds every operation to one working directory.
type Repo struct {
	Path string
}

// New binds a Repo to path. path is not validated to be a git
// repository until the first command runs against it.
func New(path string) *Repo {
	return &Repo{Path: path}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", r.Path}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", apierr.Wrap(apierr.KindInvalidArgument, fmt.Sprintf("git %s", strings.Join(args, " ")), fmt.Errorf("%s", msg))
	}
	return stdout.String(), nil
}

// Status returns the working directory's porcelain status.
func (r *Repo) Status(ctx context.Context) (Status, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return Status{}, err
	}
	return parseStatus(out), nil
}

func parseStatus(output string) Status {
	var s Status
	output = strings.TrimRight(output, " \t\n\r")
	if output == "" {
		s.Clean = true
		return s
	}
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 3 {
			continue
		}
		indicator := line[:2]
		filename := line[3:]
		switch {
		case strings.HasPrefix(indicator, "A"):
			s.Added = append(s.Added, filename)
		case strings.HasPrefix(indicator, "R"):
			s.Renamed = append(s.Renamed, filename)
		case indicator == "??":
			s.Untracked = append(s.Untracked, filename)
		case strings.Contains(indicator, "D"):
			s.Deleted = append(s.Deleted, filename)
		case strings.Contains(indicator, "M"):
			s.Modified = append(s.Modified, filename)
		}
	}
	s.Clean = !s.HasChanges()
	return s
}

// BranchInfo returns the current branch, or the detached-HEAD commit.
func (r *Repo) BranchInfo(ctx context.Context) (BranchInfo, error) {
	out, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return BranchInfo{}, err
	}
	name := strings.TrimSpace(out)
	if name != "" {
		return BranchInfo{Name: name}, nil
	}

	commit, err := r.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return BranchInfo{}, err
	}
	return BranchInfo{Detached: true, Commit: strings.TrimSpace(commit)}, nil
}

// Diff returns a unified diff. An empty path diffs the whole tree;
// staged selects `--cached`.
func (r *Repo) Diff(ctx context.Context, path string, staged bool) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	if path != "" {
		args = append(args, "--", path)
	}
	return r.run(ctx, args...)
}

// Log returns the last n commits.
func (r *Repo) Log(ctx context.Context, n int) ([]LogEntry, error) {
	if n <= 0 {
		n = 20
	}
	out, err := r.run(ctx, "log", fmt.Sprintf("-%d", n), "--pretty=format:%H\x1f%an\x1f%ad\x1f%s")
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\x1f")
		if len(fields) != 4 {
			continue
		}
		entries = append(entries, LogEntry{Commit: fields[0], Author: fields[1], Date: fields[2], Subject: fields[3]})
	}
	return entries, nil
}

// Stage adds path to the index.
func (r *Repo) Stage(ctx context.Context, path string) error {
	_, err := r.run(ctx, "add", "--", path)
	return err
}

// Unstage removes path from the index without touching the working tree.
func (r *Repo) Unstage(ctx context.Context, path string) error {
	_, err := r.run(ctx, "restore", "--staged", "--", path)
	return err
}

// Commit records the index with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the current branch to its upstream.
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, "push")
	return err
}

// Pull fetches and merges/rebases the current branch's upstream.
func (r *Repo) Pull(ctx context.Context) error {
	_, err := r.run(ctx, "pull")
	return err
}
