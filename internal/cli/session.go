package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/composition"
	"github.com/roach88/bomgraph/internal/config"
	"github.com/roach88/bomgraph/internal/graph"
	"github.com/roach88/bomgraph/internal/kvstore"
	"github.com/roach88/bomgraph/internal/metrics"
	"github.com/roach88/bomgraph/internal/model"
	"github.com/roach88/bomgraph/internal/store"
)

// session is everything a command needs: resolved config, an open store and
// a service wired with logging and metrics.
type session struct {
	cfg      config.Config
	store    model.EdgeStore
	svc      *composition.Service
	logger   *slog.Logger
	registry *prometheus.Registry
}

// resolveConfig loads the config file (or defaults) and applies flag
// overrides on top.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Tenant != "" {
		cfg.Tenant = opts.Tenant
	}
	if opts.MetricsOut != "" {
		cfg.MetricsOut = opts.MetricsOut
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger creates the CLI logger. Logs always go to w (stderr), never to
// command output.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.SlogLevel())

	logger.Debug("opening database", "backend", cfg.Backend, "path", cfg.Database)
	st, err := openStore(cfg, logger, opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	registry := prometheus.NewRegistry()
	svcOpts := []composition.Option{
		composition.WithLogger(logger),
		composition.WithMetrics(metrics.New(registry)),
		composition.WithDetector(graph.NewDetector(graph.WithPageSize(cfg.CycleDetection.PageSize))),
	}
	if opts.IDGenerator != nil {
		svcOpts = append(svcOpts, composition.WithIDGenerator(opts.IDGenerator))
	}

	return &session{
		cfg:      cfg,
		store:    st,
		svc:      composition.New(st, svcOpts...),
		logger:   logger,
		registry: registry,
	}, nil
}

func openStore(cfg config.Config, logger *slog.Logger, verbose bool) (model.EdgeStore, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		kc := kvstore.DefaultConfig(cfg.Database)
		if verbose {
			kc.Logger = logger.With("component", "badger")
		}
		s, err := kvstore.Open(kc)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := store.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// tenant returns the configured tenant or a command error if none is set.
func (s *session) tenant() (string, error) {
	if s.cfg.Tenant == "" {
		return "", NewExitError(ExitCommandError, "tenant is required (--tenant or tenant in config)")
	}
	return s.cfg.Tenant, nil
}

// Close writes metrics if requested and closes the store.
func (s *session) Close() {
	if s.cfg.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(s.cfg.MetricsOut, s.registry); err != nil {
			s.logger.Error("failed to write metrics", "path", s.cfg.MetricsOut, "error", err)
		} else {
			s.logger.Debug("metrics written", "path", s.cfg.MetricsOut)
		}
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

func arrow(parent, component string) string {
	return fmt.Sprintf("%s -> %s", parent, component)
}
