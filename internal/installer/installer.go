// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package installer probes whether the Codex/Claude Code CLIs and
// Node.js are installed, and runs their npm install as a polled,
// append-only background job — adapted from the teacher's crash
// manager's "append a record, let the HTTP layer poll it" idiom.
package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nullstack-dev/deskbridge/internal/launcher"
)

// ToolStatus answers the "Tool status" HTTP endpoint (spec §6).
type ToolStatus struct {
	Installed      bool   `json:"installed"`
	Version        string `json:"version,omitempty"`
	ExecutablePath string `json:"executablePath,omitempty"`
	ConfigPath     string `json:"configPath"`
	ConfigExists   bool   `json:"configExists"`
	NodeInstalled  bool   `json:"nodeInstalled"`
	NodeVersion    string `json:"nodeVersion,omitempty"`
	NPMInstalled   bool   `json:"npmInstalled"`
	Platform       string `json:"platform"`
}

// JobStatus is the three-state lifecycle of an install job.
type JobStatus string

const (
	JobRunning   JobStatus = "Running"
	JobSucceeded JobStatus = "Succeeded"
	JobFailed    JobStatus = "Failed"
)

// Job is one install run's append-only record.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	Log    []string  `json:"log"`
}

// Manager probes tool/node status and runs install jobs.
type Manager struct {
	npmPackages map[string]string // tool name -> npm package

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewManager builds a Manager. npmPackages maps a tool name ("codex",
// "claude") to the npm package that installs its CLI.
func NewManager(npmPackages map[string]string) *Manager {
	return &Manager{npmPackages: npmPackages, jobs: make(map[string]*Job)}
}

// Probe reports installed/version/config-path status for one tool.
func (m *Manager) Probe(ctx context.Context, tool, configPath string) ToolStatus {
	status := ToolStatus{
		ConfigPath: configPath,
		Platform:   runtime.GOOS,
	}

	if spawn, err := launcher.Resolve(ctx, tool, launcher.Options{}); err == nil {
		status.Installed = true
		status.ExecutablePath = spawn.Path
		status.Version = probeVersion(ctx, spawn.Path)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			status.ConfigExists = true
		}
	}

	if nodeSpawn, err := launcher.Resolve(ctx, "node", launcher.Options{}); err == nil {
		status.NodeInstalled = true
		status.NodeVersion = probeVersion(ctx, nodeSpawn.Path)
	}
	if _, err := launcher.Resolve(ctx, "npm", launcher.Options{}); err == nil {
		status.NPMInstalled = true
	}

	return status
}

func probeVersion(ctx context.Context, path string) string {
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// InstallTool starts an npm install for tool's package and returns the
// job id immediately; the install itself runs in the background.
func (m *Manager) InstallTool(tool string) (string, error) {
	pkg, ok := m.npmPackages[tool]
	if !ok {
		return "", fmt.Errorf("installer: unknown tool %q", tool)
	}
	return m.startJob("npm", "install", "-g", pkg), nil
}

// InstallNode starts the platform's Node.js install. Grounded the same
// way as InstallTool: a backgrounded command whose log is polled.
func (m *Manager) InstallNode() string {
	if runtime.GOOS == "darwin" {
		return m.startJob("brew", "install", "node")
	}
	return m.startJob("sh", "-c", "curl -fsSL https://deb.nodesource.com/setup_lts.x | sh - && apt-get install -y nodejs")
}

func (m *Manager) startJob(name string, args ...string) string {
	job := &Job{ID: uuid.NewString(), Status: JobRunning}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.run(job, name, args)
	return job.ID
}

func (m *Manager) run(job *Job, name string, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			job.Log = append(job.Log, line)
		}
	}
	if err != nil {
		job.Log = append(job.Log, err.Error())
		job.Status = JobFailed
		return
	}
	job.Status = JobSucceeded
}

// JobStatusOf returns a copy of the job's current status and log.
func (m *Manager) JobStatusOf(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	logCopy := make([]string, len(job.Log))
	copy(logCopy, job.Log)
	return Job{ID: job.ID, Status: job.Status, Log: logCopy}, true
}
