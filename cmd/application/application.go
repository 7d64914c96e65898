// Package application provides the application interface for ballast commands.
//
// The Application interface defines the contract between the application layer
// and command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	import (
//	    "github.com/harborwatch/ballast/cmd/application"
//	)
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            b, err := app.Ballast()
//	            if err != nil {
//	                return err
//	            }
//	            report, err := b.Check(cmd.Context())
//	            // ... render report
//	            return err
//	        },
//	    }
//	}
//
// Commands accept this interface rather than the concrete App type, so tests
// can substitute a fake backed by an in-memory manifest.
package application

import (
	"github.com/rs/zerolog"

	"github.com/harborwatch/ballast"
)

// Application provides the application state that commands need.
// The App struct from cmd/ballast/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Ballast returns the shared ballast instance, lazily constructed from
	// the application configuration and cached for subsequent calls.
	Ballast() (ballast.Ballast, error)

	// BallastWithOptions creates a fresh instance with the application
	// configuration plus the given options. The result is not cached and the
	// caller owns closing it.
	BallastWithOptions(opts ...ballast.Option) (ballast.Ballast, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Format returns the configured output format (table or json).
	Format() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
