// Package app wires configuration, logging and the scholardb client into the
// CLI commands.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ugoscholars/scholardb"
	"github.com/ugoscholars/scholardb/internal/cmd/application"
	"github.com/ugoscholars/scholardb/internal/cmd/output"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
)

var _ application.Application = (*App)(nil)

// App represents the scholardb application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// clients opened by commands, closed on Shutdown
	mu        sync.Mutex
	clients   []scholardb.Client
	newClient func(ctx context.Context, opts ...scholardb.Option) (scholardb.Client, error)
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:   version,
		commit:    commit,
		date:      date,
		builtBy:   builtBy,
		newClient: scholardb.New,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, serrors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the explicit --format, or a format detected from stdout.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Quiet reports whether -q was given.
func (a *App) Quiet() bool { return a.config.Quiet }

// Client opens a client for the configured store. opts are applied after
// the configuration.
func (a *App) Client(ctx context.Context, opts ...scholardb.Option) (scholardb.Client, error) {
	settings, err := a.config.Settings()
	if err != nil {
		return nil, err
	}

	all := append([]scholardb.Option{scholardb.FromConfig(settings)}, opts...)
	client, err := a.newClient(ctx, all...)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()
	return client, nil
}

// Shutdown closes every client opened by Client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	clients := a.clients
	a.clients = nil
	a.mu.Unlock()

	var errs []error
	for _, c := range clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClientFactory replaces scholardb.New (useful for testing).
func WithClientFactory(fn func(ctx context.Context, opts ...scholardb.Option) (scholardb.Client, error)) Option {
	return func(a *App) error {
		a.newClient = fn
		return nil
	}
}
