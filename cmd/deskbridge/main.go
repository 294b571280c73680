// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nullstack-dev/deskbridge/internal/app"
	"github.com/nullstack-dev/deskbridge/internal/config"
)

var version = "0.1"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		configPath  string
		host        string
		port        int
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("deskbridge %s\n", version)
		os.Exit(0)
	}

	if configPath == "" {
		loader := config.NewLoader()
		if found, err := loader.FindConfig(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		log.Printf("using config: %s", configPath)
	} else {
		log.Printf("no config file found, using defaults")
	}

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		Version:    version,
	})
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("app error: %v", err)
	}
}

// runInit handles the "deskbridge init" command: an interactive HJSON
// config generator, grounded on the teacher's "trellis init" flow.
func runInit() error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	showHelp := initFlags.Bool("help", false, "Show help for init command")
	initFlags.BoolVar(showHelp, "h", false, "Show help for init command")
	initFlags.Parse(os.Args[2:])

	if *showHelp {
		fmt.Println(`Usage: deskbridge init [options]

Create a new deskbridge.hjson configuration file in the current directory.

Options:
  -h, -help    Show this help message`)
		return nil
	}

	configFile := "deskbridge.hjson"
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use a different directory", configFile)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Deskbridge Configuration Setup")
	fmt.Println("===============================")
	fmt.Println()
	fmt.Println("Press Enter to accept defaults shown in [brackets].")
	fmt.Println()

	portStr := prompt(reader, "Server port", "9110")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 9110
	}

	host := prompt(reader, "Server host", "127.0.0.1")
	dataDir := prompt(reader, "Data directory (providers.json/projects.json)", "~/.deskbridge")

	approvalPolicy := prompt(reader, "Default approval policy", "never")
	sandboxPolicy := prompt(reader, "Default sandbox policy", "full-access")

	content := generateConfig(host, port, dataDir, approvalPolicy, sandboxPolicy)
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Println()
	fmt.Printf("Created %s\n", configFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit deskbridge.hjson as needed")
	fmt.Println("  2. Run: ./deskbridge")
	fmt.Println("  3. Point the browser UI at http://" + host + ":" + strconv.Itoa(port))

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func generateConfig(host string, port int, dataDir, approvalPolicy, sandboxPolicy string) string {
	var sb strings.Builder

	sb.WriteString(`{
  // =============================================================================
  // Deskbridge Configuration
  // =============================================================================
  //
  // This is an HJSON file (JSON with comments and relaxed syntax).

  // ---------------------------------------------------------------------------
  // HTTP+WebSocket server (loopback)
  // ---------------------------------------------------------------------------
  server: {
`)
	fmt.Fprintf(&sb, "    host: %q\n", host)
	fmt.Fprintf(&sb, "    port: %d\n", port)
	sb.WriteString(`  }

  // ---------------------------------------------------------------------------
  // Where providers.json/projects.json are persisted
  // ---------------------------------------------------------------------------
`)
	fmt.Fprintf(&sb, "  data_dir: %q\n\n", dataDir)

	sb.WriteString(`  // ---------------------------------------------------------------------------
  // Codex CLI launch overrides (leave empty to search PATH/well-known
  // install locations)
  // ---------------------------------------------------------------------------
  codex: {
    executable_path: ""
    extra_args: []
    env: {}
  }

  // ---------------------------------------------------------------------------
  // Claude Code CLI launch overrides
  // ---------------------------------------------------------------------------
  claude: {
    executable_path: ""
    extra_args: []
    env: {}
  }

  // ---------------------------------------------------------------------------
  // System-fixed approval/sandbox policy for every new agent thread;
  // never proxied from the browser UI
  // ---------------------------------------------------------------------------
  policy: {
`)
	fmt.Fprintf(&sb, "    approval_policy: %q\n", approvalPolicy)
	fmt.Fprintf(&sb, "    sandbox_policy: %q\n", sandboxPolicy)
	sb.WriteString(`  }

  // ---------------------------------------------------------------------------
  // Session archive discovery; leave roots empty to derive from the
  // platform's home directory
  // ---------------------------------------------------------------------------
  archive: {
    codex_root: ""
    claude_root: ""
    cache_ttl_seconds: 120
  }
}
`)

	return sb.String()
}
