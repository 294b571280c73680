// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires every component named in spec §4 into one process:
// config, the per-tool Agent Gateways, the terminal mux, the session
// archive scanner and its cache/watcher, the tool installer, and the
// HTTP surface, then owns their start/stop lifecycle.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nullstack-dev/deskbridge/internal/agent"
	"github.com/nullstack-dev/deskbridge/internal/api"
	"github.com/nullstack-dev/deskbridge/internal/archive"
	"github.com/nullstack-dev/deskbridge/internal/config"
	"github.com/nullstack-dev/deskbridge/internal/fsops"
	"github.com/nullstack-dev/deskbridge/internal/installer"
	"github.com/nullstack-dev/deskbridge/internal/launcher"
	"github.com/nullstack-dev/deskbridge/internal/store"
	"github.com/nullstack-dev/deskbridge/internal/termmux"
)

// Options configures a new App.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Version    string
}

// App is the main application container (spec §4 "HTTP Surface" root).
type App struct {
	mu sync.RWMutex

	configPath string
	version    string
	config     *config.Config

	store     *store.Store
	gateways  map[agent.ToolKind]*agent.Gateway
	terminals *termmux.Registry
	termHTTP  *termmux.Handler
	scanner   *archive.Scanner
	cache     *archive.AggregateCache
	watcher   *archive.Watcher
	installer *installer.Manager
	server    *http.Server

	done     chan struct{}
	stopOnce sync.Once
}

// New loads configuration and returns an unstarted App.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = loader.LoadWithDefaults(opts.ConfigPath)
	} else if found, ferr := loader.FindConfig(); ferr == nil {
		cfg, err = loader.LoadWithDefaults(found)
	} else {
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	return &App{
		configPath: opts.ConfigPath,
		version:    opts.Version,
		config:     cfg,
		done:       make(chan struct{}),
	}, nil
}

// Initialize builds every component and the HTTP router, but starts
// nothing yet.
func (a *App) Initialize(ctx context.Context) error {
	cfg := a.config

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = st

	policy := agent.Policy{
		ApprovalPolicy: cfg.Policy.ApprovalPolicy,
		SandboxPolicy:  cfg.Policy.SandboxPolicy,
	}

	a.gateways = map[agent.ToolKind]*agent.Gateway{
		agent.ToolCodex:      agent.New(agent.ToolCodex, policy, st, resolver("codex", cfg.Codex)),
		agent.ToolClaudeCode: agent.New(agent.ToolClaudeCode, policy, st, resolver("claude", cfg.Claude)),
	}

	a.terminals = termmux.NewRegistry()
	a.termHTTP = termmux.NewHandler(a.terminals)

	roots := archiveRoots(cfg.Archive)
	a.scanner = archive.NewScanner(roots)
	ttl := time.Duration(cfg.Archive.CacheTTLSeconds) * time.Second
	a.cache = archive.NewAggregateCache(a.scanner, ttl)
	watcher, err := archive.NewWatcher(roots, a.scanner, a.cache)
	if err != nil {
		log.Printf("Warning: failed to start archive watcher: %v", err)
	} else {
		a.watcher = watcher
	}

	a.installer = installer.NewManager(map[string]string{
		"codex":  "@openai/codex",
		"claude": "@anthropic-ai/claude-code",
	})

	configPaths := map[string]string{
		"codex":  codexConfigPath(),
		"claude": claudeConfigPath(),
	}

	router := api.NewRouter(api.Dependencies{
		Store:     a.store,
		Scanner:   a.scanner,
		Cache:     a.cache,
		Terminal:  a.termHTTP,
		Installer: a.installer,
		WorkspaceFS: func(workspacePath string) *fsops.Workspace {
			return fsops.New(workspacePath)
		},
		Gateways:    a.gateways,
		ConfigPaths: configPaths,
	})

	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	return nil
}

// resolver builds the per-tool child-process spawn resolver the Agent
// Gateway uses to (re)launch its child on demand (spec §4.3: "the
// server never exits on child-process death; it respawns on the next
// request").
func resolver(name string, tc config.ToolConfig) func(ctx context.Context) (*launcher.Spawn, error) {
	args := tc.ExtraArgs
	if name == "codex" {
		// Codex serves its JSON-RPC protocol from the app-server subcommand.
		args = append([]string{"app-server"}, tc.ExtraArgs...)
	}
	return func(ctx context.Context) (*launcher.Spawn, error) {
		return launcher.Resolve(ctx, name, launcher.Options{
			ExplicitPath: tc.ExecutablePath,
			ExtraArgs:    args,
			EnvOverlay:   tc.Env,
		})
	}
}

func archiveRoots(cfg config.ArchiveConfig) map[archive.ToolKind]string {
	home, _ := os.UserHomeDir()
	codexRoot := cfg.CodexRoot
	if codexRoot == "" {
		codexRoot = filepath.Join(home, ".codex", "sessions")
	}
	claudeRoot := cfg.ClaudeRoot
	if claudeRoot == "" {
		claudeRoot = filepath.Join(home, ".claude", "projects")
	}
	return map[archive.ToolKind]string{
		archive.ToolCodex:      codexRoot,
		archive.ToolClaudeCode: claudeRoot,
	}
}

func codexConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex", "config.toml")
}

func claudeConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude.json")
}

// Start begins serving HTTP in the background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		log.Printf("deskbridge listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()
	return nil
}

// Run initializes, starts, and blocks until a shutdown signal or
// context cancellation, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, shutting down", sig)
	case <-ctx.Done():
		log.Printf("context cancelled, shutting down")
	case <-a.done:
		log.Printf("shutdown requested")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully tears down every component.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.terminals != nil {
		a.terminals.Shutdown()
	}
	for _, gw := range a.gateways {
		if err := gw.Close(); err != nil {
			log.Printf("error closing gateway: %v", err)
		}
	}

	log.Println("shutdown complete")
	return nil
}

// Stop signals Run to shut down. Safe to call multiple times.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
	})
}
