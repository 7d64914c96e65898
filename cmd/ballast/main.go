// Package main provides the entry point for the ballast CLI.
package main

import (
	"context"
	"os"
	"time"

	"github.com/harborwatch/ballast/cmd/ballast/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Signal context so an interrupted run rolls back instead of
	// committing a half-applied diff.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	err = application.Execute(ctx, os.Args[1:])

	// Release the shared database handle with a fresh context; the
	// signal context may already be cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		application.Logger().Error().Err(shutdownErr).Msg("shutdown error")
	}

	app.ExitOnError(err)
}
