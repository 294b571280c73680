// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package store persists Projects and Providers (spec §3 Data Model)
// to two JSON files with atomic single-writer/many-reader access,
// grounded on the terminal window store's write-tmp-then-rename idiom.
package store

import "time"

// ToolKind mirrors a Project's agent-tool affinity.
type ToolKind string

const (
	ToolCodex      ToolKind = "codex"
	ToolClaudeCode ToolKind = "claude-code"
)

// RequestShape names a Provider's wire compatibility.
type RequestShape string

const (
	ShapeOpenAICompat    RequestShape = "openai-compat"
	ShapeAnthropicCompat RequestShape = "anthropic-compat"
	ShapeAzureCompat     RequestShape = "azure-compat"
)

// Provider is a configured model backend (spec §3 Provider entity).
type Provider struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	BaseAddress      string       `json:"baseAddress"`
	APIKey           string       `json:"apiKey"`
	RequestShape     RequestShape `json:"requestShape"`
	AzureAPIVersion  string       `json:"azureApiVersion,omitempty"`
	Models           []string     `json:"models"`
	RefreshedAt      time.Time    `json:"refreshedAt"`
}

// Project is one user-configured workspace (spec §3 Project entity).
type Project struct {
	ID            string    `json:"id"`
	ToolKind      ToolKind  `json:"toolKind"`
	Name          string    `json:"name"`
	WorkspacePath string    `json:"workspacePath"`
	ProviderID    *string   `json:"providerId,omitempty"`
	Model         string    `json:"model,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastStartedAt *time.Time `json:"lastStartedAt,omitempty"`
}
