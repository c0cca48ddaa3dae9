package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/fourpillars-ai/pillars/internal/adapters/backend"
	"github.com/fourpillars-ai/pillars/internal/adapters/state"
	"github.com/fourpillars-ai/pillars/internal/config"
	"github.com/fourpillars-ai/pillars/internal/core"
	"github.com/fourpillars-ai/pillars/internal/events"
	"github.com/fourpillars-ai/pillars/internal/history"
	"github.com/fourpillars-ai/pillars/internal/logging"
	"github.com/fourpillars-ai/pillars/internal/orchestrator"
	"github.com/fourpillars-ai/pillars/internal/registry"
)

// app bundles the wired components every command works against.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    core.Store
	registry *registry.Registry
	history  *history.Store
	bus      *events.Bus
	orch     *orchestrator.Orchestrator
}

// buildApp loads configuration and wires the full component graph.
func buildApp() (*app, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if quiet {
		logger = logging.NewNop()
	}

	store, err := state.NewStore(cfg.State.Backend, cfg.State.Dir, logger)
	if err != nil {
		return nil, err
	}

	reg := registry.New(cfg.AgentsOrDefault(), store, logger)
	hist := history.New(store, cfg.History.Capacity, logger)
	bus := events.New(256)
	client := backend.New(cfg.Backend.URL, logger, backend.WithTimeout(cfg.Backend.Timeout))
	orch := orchestrator.New(client, reg, hist, store, bus, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: reg,
		history:  hist,
		bus:      bus,
		orch:     orch,
	}, nil
}

// close releases resources that hold file or database handles.
func (a *app) close() {
	a.bus.Close()
	if err := state.CloseStore(a.store); err != nil {
		a.logger.Warn("closing state store failed", slog.String("error", err.Error()))
	}
}
