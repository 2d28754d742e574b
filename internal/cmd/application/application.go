// Package application provides the application interface for scholardb commands.
//
// Commands accept an Application rather than the concrete app type so they
// can be tested with Mock.
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            _, err = client.Consolidate(cmd.Context())
//	            return err
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ugoscholars/scholardb"
)

// Application provides what commands need from the running app.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client opens a client for the configured store. Options are applied
	// after the configuration, so command flags override config values.
	// The app closes every client it opened on shutdown.
	Client(ctx context.Context, opts ...scholardb.Option) (scholardb.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Quiet reports whether human-readable summaries should be suppressed.
	Quiet() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
