package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/config"
	"github.com/jonathan/architect/internal/db"
	"github.com/jonathan/architect/internal/gateway"
	"github.com/jonathan/architect/internal/integrations"
	"github.com/jonathan/architect/internal/llm"
	"github.com/jonathan/architect/internal/logging"
	"github.com/jonathan/architect/internal/metrics"
	"github.com/jonathan/architect/internal/navigation"
	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/panels"
	"github.com/jonathan/architect/internal/project"
	"github.com/jonathan/architect/internal/storage"
	"github.com/jonathan/architect/internal/storefront"
	"github.com/jonathan/architect/internal/types"
	"github.com/jonathan/architect/internal/wizard"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	backend    storage.Backend
	client     llm.Client
	gateway    *gateway.Gateway
	store      *project.Store
	dispatcher *navigation.Dispatcher
	notes      *notify.Center
	panels     *panels.Service
	wizards    *wizard.Manager
}

// newApp loads configuration, sets up logging and wires the services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormatOrEnv())

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		backend.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	if cfg.APIKey == "" {
		logger.Warn().Msg("no API key configured; AI features are unavailable")
	}

	m := metrics.New()
	gwOpts := []gateway.Option{gateway.WithMetrics(m), gateway.WithLogger(logger)}
	if command, args := cfg.PlayerArgs(); command != "" {
		gwOpts = append(gwOpts, gateway.WithPlayer(gateway.ExecPlayer{Command: command, Args: args}))
	}
	gw := gateway.New(client, gwOpts...)

	storeOpts := []project.Option{
		project.WithPlanner(gw),
		project.WithUndoWindow(cfg.Undo()),
		project.WithMetrics(m),
		project.WithLogger(logger),
	}
	if cfg.ConnectivityURL != "" {
		storeOpts = append(storeOpts, project.WithConnectivity(project.NewHTTPProbe(cfg.ConnectivityURL)))
	}
	store := project.NewStore(ctx, storage.New(backend, storage.WithLogger(logger)), storeOpts...)

	auditOpts := []storefront.Option{storefront.WithLogger(logger)}
	if cfg.BrowserRender {
		auditOpts = append(auditOpts, storefront.WithRenderer(storefront.ChromeRenderer{}))
	}

	notes := notify.NewCenter(notify.WithMetrics(m), notify.WithLogger(logger))
	pnl := panels.New(store, gw,
		panels.WithIntegrations(integrations.NewClient(integrations.WithLogger(logger))),
		panels.WithStorefront(storefront.NewAuditor(auditOpts...)),
		panels.WithNotifications(notes),
		panels.WithLogger(logger),
	)

	dispatcher := navigation.NewDispatcher(store,
		navigation.WithMatcher(navigation.NewMatcher(cfg.MatchThreshold)),
		navigation.WithLogger(logger),
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		backend:    backend,
		client:     client,
		gateway:    gw,
		store:      store,
		dispatcher: dispatcher,
		notes:      notes,
		panels:     pnl,
		wizards:    wizard.NewManager(pnl.WizardHooks()),
	}, nil
}

// Close releases the LLM client and the storage backend.
func (a *app) Close() {
	a.gateway.StopSpeech()
	if err := a.gateway.Close(); err != nil {
		log.Debug().Err(err).Msg("closing gateway")
	}
	if err := a.backend.Close(); err != nil {
		log.Debug().Err(err).Msg("closing storage")
	}
}

// openBackend selects the storage backend named by cfg.Storage.
func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemoryBackend(), nil
	case config.StoragePostgres:
		kv, err := db.NewKVStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return kv, nil
	case config.StorageFile, "":
		fb, err := storage.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return fb, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// resolveProject finds a project by exact id, then by fuzzy name.
func resolveProject(projects []types.Project, ref string, threshold float64) (*types.Project, error) {
	for i := range projects {
		if projects[i].ID == ref {
			return &projects[i], nil
		}
	}
	id, _, ok := navigation.NewMatcher(threshold).Best(ref, projects)
	if !ok {
		return nil, fmt.Errorf("%w: no project matches %q", project.ErrNotFound, ref)
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", project.ErrNotFound, id)
}

// resolveStep finds a step by 1-based position or by id.
func resolveStep(p *types.Project, ref string) (*types.Step, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(p.Steps) {
			return nil, fmt.Errorf("step %d out of range (1-%d)", n, len(p.Steps))
		}
		return &p.Steps[n-1], nil
	}
	if i := p.StepIndex(ref); i >= 0 {
		return &p.Steps[i], nil
	}
	return nil, fmt.Errorf("no step %q in %s", ref, p.Name)
}
