// Package container provides dependency injection for the dashboard.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/finance-dashboard/internal/config"
	"fjacquet/finance-dashboard/internal/csvparser"
	"fjacquet/finance-dashboard/internal/dedup"
	"fjacquet/finance-dashboard/internal/importer"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/report"
	"fjacquet/finance-dashboard/internal/sanitizer"
	"fjacquet/finance-dashboard/internal/server"
	"fjacquet/finance-dashboard/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; dependencies are reached through
// getter methods only.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     store.Store
	importer  *importer.Orchestrator
	reports   *report.Generator
	delimiter rune
}

// Option overrides a dependency that NewContainer would otherwise build.
type Option func(*options)

type options struct {
	logger logging.Logger
	store  store.Store
}

// WithLogger injects the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore injects the store; no connection or migration is attempted.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	s := o.store
	if s == nil {
		var err error
		if s, err = openStore(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	if cfg.Categories.SeedFile != "" {
		seed, err := store.LoadCategorySeed(cfg.Categories.SeedFile)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to load category seed: %w", err)
		}
		if _, err := store.SeedCategories(ctx, s, seed, logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	delimiter := []rune(cfg.CSV.Delimiter)[0]
	orchestrator := importer.New(importer.Deps{
		Parser:    csvparser.New(logger, delimiter),
		Sanitizer: sanitizer.New(Aliases(cfg), logger),
		Dedup:     dedup.New(nil),
		Store:     s,
		Logger:    logger,
	})

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldDriver, cfg.Store.Driver),
		logging.F("custom_aliases", len(cfg.Import.FieldAliases)))

	return &Container{
		logger:    logger,
		config:    cfg,
		store:     s,
		importer:  orchestrator,
		reports:   report.NewGenerator(logger),
		delimiter: delimiter,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("Using the in-memory store; data is lost on exit")
		return store.NewMemory(store.WithPageSize(cfg.Import.PageSize)), nil
	case config.DriverPostgres:
		dsn := cfg.Store.Postgres.DSN()
		if cfg.Store.MigrateOnStart {
			result, err := store.Migrate(dsn)
			if err != nil {
				return nil, fmt.Errorf("failed to migrate store: %w", err)
			}
			logger.Info("Store schema ready",
				logging.F("version", result.Version),
				logging.F("changed", result.Changed))
		}
		pg, err := store.NewPostgres(ctx, store.PostgresOptions{
			DSN:      dsn,
			MaxConns: cfg.Store.Postgres.MaxConns,
			PageSize: cfg.Import.PageSize,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// Aliases converts the configured alias table. An empty table yields nil,
// which selects the built-in aliases.
func Aliases(cfg *config.Config) sanitizer.FieldAliases {
	if len(cfg.Import.FieldAliases) == 0 {
		return nil
	}
	out := make(sanitizer.FieldAliases, len(cfg.Import.FieldAliases))
	for _, a := range cfg.Import.FieldAliases {
		out[a.Field] = append(out[a.Field], a.Aliases...)
	}
	return out
}

// NewServer builds the HTTP API over the container's dependencies.
func (c *Container) NewServer() *server.Server {
	return server.New(server.Options{
		Store:          c.store,
		Importer:       c.importer,
		Reports:        c.reports,
		Logger:         c.logger,
		AllowedOrigins: c.config.Server.AllowedOrigins,
		MaxUploadBytes: c.config.Server.MaxUploadMB << 20,
		Delimiter:      c.delimiter,
	})
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the store shared by every component.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetImporter returns the import orchestrator.
func (c *Container) GetImporter() *importer.Orchestrator {
	return c.importer
}

// GetReportGenerator returns the summary renderer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// Delimiter is the configured CSV delimiter.
func (c *Container) Delimiter() rune {
	return c.delimiter
}

// Close releases the store connection.
func (c *Container) Close() error {
	c.store.Close()
	c.logger.Info("Container closed")
	return nil
}
