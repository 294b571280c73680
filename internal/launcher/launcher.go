// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package launcher resolves a logical agent-tool name to a concrete,
// OS-aware spawn descriptor.
package launcher

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

// Spawn describes how to start a child process for a logical tool.
type Spawn struct {
	Path string
	Argv []string
	Dir  string
	Env  []string
}

// Options customize resolution for one call.
type Options struct {
	// ExplicitPath, if non-empty, is tried first (search step 1).
	ExplicitPath string
	// ExtraArgs is appended to the resolved argv.
	ExtraArgs []string
	Dir       string
	// EnvOverlay is merged on top of the inherited environment.
	EnvOverlay map[string]string
}

// whichTimeout bounds the PATH-resolver subprocess (spec §5).
const whichTimeout = 5 * time.Second

// Resolve finds an executable for the logical tool name and builds a
// Spawn descriptor. name is one of "codex", "claude", or a shell name.
func Resolve(ctx context.Context, name string, opts Options) (*Spawn, error) {
	path, err := findExecutable(ctx, name, opts.ExplicitPath)
	if err != nil {
		return nil, err
	}

	resolvedDir := filepath.Dir(path)
	argv := []string{path}
	argv = append(argv, opts.ExtraArgs...)
	execPath := path

	if runtime.GOOS == "windows" && isBatchShim(path) {
		// A direct spawn can't execute a .cmd/.bat without shell semantics.
		argv = append([]string{"cmd", "/c", path}, opts.ExtraArgs...)
		execPath = "cmd"
	}

	env := prependPath(os.Environ(), resolvedDir)
	for k, v := range opts.EnvOverlay {
		env = append(env, k+"="+v)
	}

	return &Spawn{Path: execPath, Argv: argv, Dir: opts.Dir, Env: env}, nil
}

func isBatchShim(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".cmd" || ext == ".bat"
}

func prependPath(env []string, dir string) []string {
	prefix := "PATH="
	sep := string(os.PathListSeparator)
	out := make([]string, 0, len(env))
	found := false
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			found = true
			out = append(out, prefix+dir+sep+strings.TrimPrefix(e, prefix))
			continue
		}
		out = append(out, e)
	}
	if !found {
		out = append(out, prefix+dir)
	}
	return out
}

// findExecutable runs the search order from spec §4.1: explicit path,
// well-known install locations, PATH, then a which/where fallback.
func findExecutable(ctx context.Context, name, explicit string) (string, error) {
	if explicit != "" {
		if fileExists(explicit) {
			return explicit, nil
		}
		return "", apierr.NotFound("executable not found at explicit path %q", explicit)
	}

	for _, candidate := range wellKnownLocations(name) {
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	if path, ok := whichFallback(ctx, name); ok {
		return path, nil
	}

	return "", apierr.NotFound("could not locate executable %q", name)
}

// IsAlive reports whether pid refers to a live process, via go-ps
// rather than unix-only signal(0) semantics. Nothing else in the
// module calls it yet.
func IsAlive(pid int) bool {
	proc, err := ps.FindProcess(pid)
	return err == nil && proc != nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// wellKnownLocations returns OS-specific candidate install paths for a
// logical tool name, honoring per-user npm globals and Homebrew prefixes.
func wellKnownLocations(name string) []string {
	home, _ := os.UserHomeDir()
	var candidates []string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			candidates = append(candidates,
				filepath.Join(appData, "npm", name+".cmd"),
				filepath.Join(appData, "npm", name+".exe"),
			)
		}
		if home != "" {
			candidates = append(candidates,
				filepath.Join(home, "AppData", "Roaming", "npm", name+".cmd"),
			)
		}
	case "darwin":
		candidates = append(candidates,
			filepath.Join("/opt/homebrew/bin", name),
			filepath.Join("/usr/local/bin", name),
		)
		if home != "" {
			candidates = append(candidates, filepath.Join(home, ".npm-global", "bin", name))
		}
	default:
		candidates = append(candidates,
			filepath.Join("/usr/local/bin", name),
			filepath.Join("/usr/bin", name),
		)
		if home != "" {
			candidates = append(candidates, filepath.Join(home, ".npm-global", "bin", name))
		}
	}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, ".local", "bin", name))
	}
	return candidates
}

func whichFallback(ctx context.Context, name string) (string, bool) {
	cctx, cancel := context.WithTimeout(ctx, whichTimeout)
	defer cancel()

	tool := "which"
	if runtime.GOOS == "windows" {
		tool = "where"
	}
	out, err := exec.CommandContext(cctx, tool, name).Output()
	if err != nil {
		return "", false
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if line == "" {
		return "", false
	}
	return line, true
}
