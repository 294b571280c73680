// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and defaults for the
// deskbridge server.
package config

// Config is the root configuration structure for deskbridge.
type Config struct {
	Server   ServerConfig   `json:"server"`
	DataDir  string         `json:"data_dir"`
	Codex    ToolConfig     `json:"codex"`
	Claude   ToolConfig     `json:"claude"`
	Policy   PolicyConfig   `json:"policy"`
	Archive  ArchiveConfig  `json:"archive"`
}

// ServerConfig configures the loopback HTTP+WebSocket server.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ToolConfig configures how one agent CLI is located and launched.
type ToolConfig struct {
	// ExecutablePath, if set, is tried before any search-path heuristic.
	ExecutablePath string            `json:"executable_path"`
	ExtraArgs      []string          `json:"extra_args"`
	Env            map[string]string `json:"env"`
}

// PolicyConfig holds the system-fixed approval/sandbox policy for new
// agent threads. Never proxied from the HTTP layer (spec §4.3).
type PolicyConfig struct {
	ApprovalPolicy string `json:"approval_policy"`
	SandboxPolicy  string `json:"sandbox_policy"`
}

// ArchiveConfig overrides the per-tool session archive roots that would
// otherwise be derived from the platform's home/config directory.
type ArchiveConfig struct {
	CodexRoot  string `json:"codex_root"`
	ClaudeRoot string `json:"claude_root"`
	// CacheTTLSeconds is the aggregate-cache TTL (spec §4.6, ~2 min default).
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
}
