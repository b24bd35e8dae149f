// PureStream - offline-first catalog cache and AI curation
//
// Keeps a local mirror of media libraries, matches model recommendations
// against it and builds each profile's dashboard collections.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/purestream711/PureStream-sub004/internal/cli"
	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/purestream711/PureStream-sub004/internal/db"
	"github.com/purestream711/PureStream-sub004/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	paths := config.GetPaths(cfg)
	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		os.Exit(1)
	}

	var telemetryClient telemetry.Client = telemetry.NewNoop()
	if cfg.Telemetry.Enabled {
		telemetryClient = telemetry.New(database)
	}
	if profiles, err := database.ListProfiles(); err == nil {
		telemetryClient.TrackAppStarted("cli", len(profiles))
	}

	// The CLI opens its own handle per command.
	_ = database.Close()

	err = cli.Execute(ctx, telemetryClient)
	telemetryClient.Close()
	if err != nil {
		os.Exit(1)
	}
}
