// Package main provides the purestream-mcp server.
//
// purestream-mcp exposes the cached dashboards and cache state via the
// Model Context Protocol.
//
// Usage:
//
//	purestream-mcp [flags]
//
// The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/purestream711/PureStream-sub004/internal/catalog"
	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/purestream711/PureStream-sub004/internal/db"
	logger "github.com/purestream711/PureStream-sub004/internal/log"
	"github.com/purestream711/PureStream-sub004/internal/mcp"
	"github.com/purestream711/PureStream-sub004/internal/telemetry"
	"github.com/purestream711/PureStream-sub004/pkg/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("purestream-mcp: %s\n", version.Current())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		printHelp()
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	paths := config.GetPaths(cfg)

	// stdout carries the protocol, so logs go to the log file only.
	if err := logger.Init(paths.Logs, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	defer func() { _ = logger.Close() }()

	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	store, err := catalog.OpenStore(paths.Catalog, catalog.StoreOptions{
		Limits: catalog.Limits{MaxMovies: cfg.Cache.MaxMovies, MaxShows: cfg.Cache.MaxShows},
		Logger: logger.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to open catalog cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	var tc telemetry.Client = telemetry.NewNoop()
	if cfg.Telemetry.Enabled {
		tc = telemetry.New(database)
	}
	defer tc.Close()

	server := mcp.NewServer(database, store, tc)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func printHelp() {
	help := `purestream-mcp - MCP server for PureStream dashboards

USAGE:
    purestream-mcp [FLAGS]

FLAGS:
    -h, --help       Print this help message
    -v, --version    Print version information

DESCRIPTION:
    purestream-mcp is a Model Context Protocol (MCP) server that exposes
    cached PureStream dashboards and cache freshness to MCP clients.

    The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).

CONFIGURATION:
    {
      "mcpServers": {
        "purestream": {
          "type": "stdio",
          "command": "purestream-mcp"
        }
      }
    }

TOOLS PROVIDED:
    purestream_get_dashboard   Dashboard collections, featured title, staleness
    purestream_get_collection  Cached titles of one collection
    purestream_cache_status    Cache metadata with TTL and freshness
    purestream_list_profiles   Viewer profiles

RESOURCES PROVIDED:
    purestream://profile/{id}/dashboard  Dashboard as JSON
`
	fmt.Print(help)
}
