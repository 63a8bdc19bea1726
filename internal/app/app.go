package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/config"
	"github.com/MrSnakeDoc/susradar/internal/httpserver"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/index"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/radar"
	"github.com/MrSnakeDoc/susradar/internal/redis"
	"github.com/MrSnakeDoc/susradar/internal/remote"
	"github.com/MrSnakeDoc/susradar/internal/scheduler"
	"github.com/MrSnakeDoc/susradar/internal/sources/seed"
	"github.com/MrSnakeDoc/susradar/internal/store"
	"github.com/MrSnakeDoc/susradar/internal/store/gormstore"
	redisstore "github.com/MrSnakeDoc/susradar/internal/store/redis"
	"github.com/MrSnakeDoc/susradar/internal/utils"
	"github.com/MrSnakeDoc/susradar/internal/version"
)

type closer struct {
	name string
	c    io.Closer
}

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	backend store.Backend
	pinger  deps.Pinger
	closers []closer

	radar        *radar.Service
	client       *remote.Client
	sync         *remote.Store
	probeTrigger chan struct{}
}

// New opens the configured backend and wires the services. It does not
// touch the network: call Connect to reach the sync server.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	if err := a.openBackend(); err != nil {
		return nil, err
	}

	// Mutations go through the sync-aware store when a server is configured.
	var st store.Store = a.backend
	if cfg.SyncEnabled() {
		a.client = remote.NewClient(remote.Options{
			BaseURL: cfg.RemoteURL,
			Timeout: cfg.RemoteTimeout,
		}, a.backend, loggerClient)
		a.sync = remote.NewStore(a.backend, a.client, loggerClient)
		a.probeTrigger = make(chan struct{}, 1)
		st = a.sync
		loggerClient.Info("sync server configured", logger.String("url", cfg.RemoteURL))
	} else {
		loggerClient.Info("no sync server configured, running local-only")
	}

	a.radar = radar.NewService(st, loggerClient)
	if a.sync != nil {
		a.sync.SetLocker(a.radar.Locker())
	}
	return a, nil
}

func (a *App) openBackend() error {
	cfg := a.cfg

	switch cfg.StoreBackend {
	case config.BackendRedis:
		// Fail fast if Redis is unavailable
		a.logger.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		rs := redisstore.NewStore(client)
		a.backend, a.pinger = rs, rs
		a.closers = append(a.closers, closer{name: "Redis", c: client})

	case config.BackendSQLite:
		gs, err := gormstore.Open(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		a.backend, a.pinger = gs, gs
		a.closers = append(a.closers, closer{name: "SQLite", c: gs})
		a.logger.Info("sqlite store opened", logger.String("path", cfg.SQLitePath))

	case config.BackendMemory:
		a.backend = index.NewMemoryIndex()
		a.logger.Warn("memory store selected, nothing survives a restart")

	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return nil
}

// Radar is the record service used by the CLI commands.
func (a *App) Radar() *radar.Service { return a.radar }

// Sync is nil when no sync server is configured.
func (a *App) Sync() *remote.Store { return a.sync }

// Bootstrap writes the curated dataset into an empty store.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.cfg.SkipSeed {
		a.logger.Info("seed disabled, store left as is")
		return nil
	}
	ds, err := seed.Dataset(a.cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}
	if _, err := a.radar.Bootstrap(ctx, ds); err != nil {
		return fmt.Errorf("failed to bootstrap store: %w", err)
	}
	return nil
}

// Connect probes the sync server once and restores the saved session.
// It is a no-op when sync is disabled.
func (a *App) Connect(ctx context.Context) {
	if a.client == nil {
		return
	}
	a.client.Probe(ctx)
	if err := a.client.Restore(ctx); err != nil {
		a.logger.Warn("failed to restore sync session", logger.Error(err))
	}
	a.logger.Info("sync status", logger.String("state", a.client.State().String()))
}

// Close releases the backend connections.
func (a *App) Close() {
	for _, c := range a.closers {
		utils.MustClose(c.c, c.name, a.logger)
	}
	a.closers = nil
}

// Run serves the HTTP API until SIGINT/SIGTERM.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting SusRadar %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}

	a.Connect(ctx)

	var monitor *scheduler.ConnectivityMonitor
	if a.client != nil {
		monitor = scheduler.NewConnectivityMonitor(
			a.client,
			a.sync,
			a.logger,
			a.cfg.ConnectivityInterval,
			a.probeTrigger,
		)
		monitor.Start(ctx)
		a.logger.Info("connectivity monitor started",
			logger.Duration("interval", a.cfg.ConnectivityInterval))
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       a.logger,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: a.cfg.AllowedHosts,
		AllowedCIDRS: a.cfg.AllowedCIDRS,
		TrustProxy:   a.cfg.TrustProxy,
		CORSOrigins:  a.cfg.CORSOrigins,
		RateLimit:    a.cfg.RateLimitBurst,
		RatePerMin:   a.cfg.RateLimitPerMin,
		Radar:        a.radar,
		StoreBackend: a.cfg.StoreBackend,
		StorePinger:  a.pinger,
		Sync:         a.sync,
		ProbeTrigger: a.probeTrigger,
	}

	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.stopMonitor(monitor)
		a.Close()
		return err
	}

	a.stopMonitor(monitor)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	a.logger.Info("✅ SusRadar stopped cleanly")
	return nil
}

func (a *App) stopMonitor(monitor *scheduler.ConnectivityMonitor) {
	if monitor != nil {
		monitor.Stop()
	}
}
