package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	dbpkg "github.com/dryad-restoration/dryad-backend/internal/data/db"
	httpapi "github.com/dryad-restoration/dryad-backend/internal/http"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/observability"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/sse"
	"github.com/dryad-restoration/dryad-backend/internal/store"
	"github.com/dryad-restoration/dryad-backend/internal/workflow"
)

const serviceName = "dryad"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Markers  invalidation.Markers
	Workflow *workflow.Config
	Repos    Repos
	Services Services
	Stores   Stores
	Hub      *sse.Hub
	Server   *httpapi.Server

	refresher *store.Refresher
	closers   []func() error
}

// New opens the database and every client the config names, then wires the
// app. The caller owns Close.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(serviceName, cfg.Env, cfg.Version))

	database, err := dbpkg.NewDatabaseService(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	closers := []func() error{
		func() error { return otelShutdown(context.Background()) },
		database.Close,
	}
	fail := func(err error) (*App, error) {
		runClosers(log, closers)
		log.Sync()
		return nil, err
	}

	if err := dbpkg.AutoMigrateAll(database.DB()); err != nil {
		return fail(fmt.Errorf("automigrate: %w", err))
	}
	if cfg.SeedFixtures {
		if err := dbpkg.SeedFixtures(ctx, database.DB(), log); err != nil {
			return fail(fmt.Errorf("seed fixtures: %w", err))
		}
	}

	markers := invalidation.NewMemoryMarkers()
	if cfg.RedisAddr != "" {
		m, closer, err := invalidation.NewRedisMarkers(log, cfg.RedisAddr)
		if err != nil {
			return fail(fmt.Errorf("init redis markers: %w", err))
		}
		markers = m
		closers = append(closers, closer.Close)
	}

	wf, err := loadWorkflow(cfg.WorkflowFile)
	if err != nil {
		return fail(err)
	}

	a := Build(log, cfg, database.DB(), markers, wf)
	a.closers = closers
	return a, nil
}

// Build wires an app over an open database. It starts nothing.
func Build(log *logger.Logger, cfg Config, db *gorm.DB, markers invalidation.Markers, wf *workflow.Config) *App {
	if wf == nil {
		wf = workflow.Default()
	}
	hub := sse.NewHub(log)
	reposet := wireRepos(db, log)
	serviceset := wireServices(db, log, cfg, wf, reposet, markers)
	storeset := wireStores(log, wf, serviceset)
	refresher := store.NewRefresher(log, markers, storeset.sources(),
		store.WithInterval(cfg.RefreshInterval),
		store.WithMarkerPoll(cfg.MarkerPoll),
		store.WithNotifications(storeset.Notifications),
	)
	server := httpapi.NewServer(httpapi.ServerConfig{
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	}, wireRouterConfig(log, cfg, db, serviceset, storeset, hub))

	return &App{
		Log:       log,
		Cfg:       cfg,
		DB:        db,
		Markers:   markers,
		Workflow:  wf,
		Repos:     reposet,
		Services:  serviceset,
		Stores:    storeset,
		Hub:       hub,
		Server:    server,
		refresher: refresher,
	}
}

// Run serves HTTP, keeps the stores fresh and relays notifications until ctx
// ends or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	events, cancel := a.Stores.Notifications.Subscribe()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Hub.PumpNotifications(ctx, events)
		return nil
	})
	g.Go(func() error {
		return a.refresher.Run(ctx)
	})
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		return a.Server.Run(ctx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Stores.Notifications != nil {
		a.Stores.Notifications.Close()
	}
	runClosers(a.Log, a.closers)
	a.closers = nil
	a.Log.Sync()
}

func runClosers(log *logger.Logger, closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			log.Warn("Close failed", "error", err)
		}
	}
}

func loadWorkflow(path string) (*workflow.Config, error) {
	if path == "" {
		return workflow.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workflow file: %w", err)
	}
	defer f.Close()
	return readWorkflow(f)
}

func readWorkflow(r io.Reader) (*workflow.Config, error) {
	wf, err := workflow.Load(r)
	if err != nil {
		return nil, fmt.Errorf("load workflow: %w", err)
	}
	return wf, nil
}
