package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/glossync/internal/adapter/backend"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	cacherepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/cache"
	dlrepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/deadletter"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite/httpcache"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite/idmap"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite/kv"
	queuerepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/queue"
	wakeuprepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/wakeup"
	"github.com/heartmarshall/glossync/internal/auth"
	"github.com/heartmarshall/glossync/internal/cache"
	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/netmon"
	"github.com/heartmarshall/glossync/internal/service/deadletter"
	"github.com/heartmarshall/glossync/internal/service/orchestrator"
	"github.com/heartmarshall/glossync/internal/service/queue"
	"github.com/heartmarshall/glossync/internal/transport/middleware"
	"github.com/heartmarshall/glossync/internal/transport/rest"
	"github.com/heartmarshall/glossync/internal/wakeup"
)

const brokerBuffer = 32

// App holds the wired components of a running node.
type App struct {
	cfg   *config.Config
	log   *slog.Logger
	db    *sql.DB
	clock clockwork.Clock

	responses *httpcache.Repo
	entities  *cacherepo.Repo

	Queue        *queue.Service
	Orchestrator *orchestrator.Orchestrator
	Trigger      *orchestrator.Trigger
	DeadLetters  *deadletter.Service
	Credentials  *auth.Credentials
	Registry     *wakeup.Registry
	Monitor      *netmon.Monitor
	Broker       *wakeup.Broker
	Worker       *wakeup.Worker
	Interceptor  *cache.Interceptor
}

// PruneResult reports what a maintenance pass removed.
type PruneResult struct {
	Mappings  int64 `json:"mappings"  yaml:"mappings"`
	Responses int64 `json:"responses" yaml:"responses"`
}

// Build opens the local store and wires every component. The caller owns
// the returned App and must Close it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	return build(ctx, cfg, logger, clockwork.NewRealClock())
}

func build(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) (*App, error) {
	db, err := sqlite.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	// --- Repositories ---
	entries := queuerepo.New(db)
	entities := cacherepo.New(db)
	mappings := idmap.New(db)
	letters := dlrepo.New(db)
	responses := httpcache.New(db)
	settings := kv.New(db)
	tags := wakeuprepo.New(db)
	txm := sqlite.NewTxManager(db)

	// --- Services ---
	client := backend.NewClient(cfg.Backend, logger)
	creds := auth.NewCredentials(settings, clock)
	registry := wakeup.NewRegistry(tags, clock, logger)
	broker := wakeup.NewBroker(brokerBuffer, logger)
	queueSvc := queue.NewService(logger, txm, entries, entities, registry, clock)
	monitor := netmon.New(cfg.Network, client, clock, logger)

	orch := orchestrator.New(cfg.Sync, orchestrator.Deps{
		Entries:     entries,
		Mappings:    mappings,
		DeadLetters: letters,
		Entities:    entities,
		Credentials: creds,
		Sender:      client,
		Builder:     queueSvc,
		Publisher:   broker,
		Clock:       clock,
	}, logger)
	trigger := orchestrator.NewTrigger(orch, logger)
	worker := wakeup.NewWorker(registry, trigger, broker, clock, logger)

	interceptor := cache.NewInterceptor(
		http.DefaultTransport,
		cache.DefaultRoutes(cfg.Cache),
		responses,
		entities,
		monitor,
		clock,
		logger,
		cache.Options{
			MemoryEntries:  cfg.Cache.MemoryEntries,
			MemoryTTL:      cfg.Cache.MemoryTTL,
			RefreshTimeout: cfg.Backend.RequestTimeout,
		},
	)

	// One full run per reconnect; tags then only notify.
	if cfg.Sync.OnOnline {
		monitor.Subscribe(trigger.OnOnline, nil)
		monitor.Subscribe(worker.NotifyOnline, nil)
	} else {
		monitor.Subscribe(worker.OnOnline, nil)
	}

	return &App{
		cfg:          cfg,
		log:          logger,
		db:           db,
		clock:        clock,
		responses:    responses,
		entities:     entities,
		Queue:        queueSvc,
		Orchestrator: orch,
		Trigger:      trigger,
		DeadLetters:  deadletter.NewService(logger, letters, entries),
		Credentials:  creds,
		Registry:     registry,
		Monitor:      monitor,
		Broker:       broker,
		Worker:       worker,
		Interceptor:  interceptor,
	}, nil
}

// Handler builds the loopback HTTP API.
func (a *App) Handler() (http.Handler, error) {
	proxy, err := rest.NewProxy(a.cfg.Backend, a.Interceptor, a.log)
	if err != nil {
		return nil, fmt.Errorf("app.Handler: %w", err)
	}

	handlers := rest.Handlers{
		Health:      rest.NewHealthHandler(a.db, a.Monitor, BuildVersion()),
		Queue:       rest.NewQueueHandler(a.Queue, a.Trigger, a.Monitor, a.log),
		Sync:        rest.NewSyncHandler(a.Trigger, a.log),
		Session:     rest.NewSessionHandler(a.Credentials, a.Trigger, a.Monitor, a.log),
		Network:     rest.NewNetworkHandler(a.Monitor, a.log),
		Cache:       rest.NewCacheHandler(a.entities, a.log),
		DeadLetters: rest.NewDeadLetterHandler(a.DeadLetters, a.log),
		Wakeups:     rest.NewWakeupHandler(a.Registry, a.log),
		Events:      rest.NewEventsHandler(a.Broker, a.log),
		Proxy:       proxy,
	}

	chain := middleware.Chain(
		middleware.Recovery(a.log),
		middleware.RequestID(),
		middleware.Logger(a.log),
		middleware.CORS(a.cfg.CORS),
		middleware.TokenCapture(a.Credentials),
	)

	return rest.NewRouter(handlers, chain), nil
}

// Prune removes identifier mappings past retention and expired cached
// responses.
func (a *App) Prune(ctx context.Context) (PruneResult, error) {
	var res PruneResult

	n, err := a.Orchestrator.PruneMappings(ctx)
	if err != nil {
		return res, err
	}
	res.Mappings = n

	n, err = a.responses.DeleteExpired(ctx, a.clock.Now())
	if err != nil {
		return res, err
	}
	res.Responses = n

	a.log.Info("prune finished",
		slog.Int64("mappings", res.Mappings),
		slog.Int64("responses", res.Responses),
	)
	return res, nil
}

// Serve runs the HTTP server and the network monitor until ctx is
// cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	if _, err := a.Prune(ctx); err != nil {
		a.log.Warn("startup prune failed", slog.String("error", err.Error()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Monitor.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if a.cfg.Sync.OnStart {
		a.Trigger.Request()
	}

	err = g.Wait()

	a.Interceptor.Wait()
	a.Trigger.Wait()
	a.Worker.Wait()

	a.log.Info("stopped")
	return err
}

// Close releases the local store.
func (a *App) Close() error {
	return a.db.Close()
}

// Run builds the app and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	logger, closeLog := NewLogger(cfg.Log)
	defer closeLog()

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store", cfg.Store.Path),
	)

	a, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}
