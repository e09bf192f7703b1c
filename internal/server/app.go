// Package server wires configuration, storage, caches and the HTTP API into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/logging"
	"github.com/dmitrijs2005/suggestionapp/internal/server/api"
	"github.com/dmitrijs2005/suggestionapp/internal/server/cache"
	"github.com/dmitrijs2005/suggestionapp/internal/server/cache/inmemory"
	rediscache "github.com/dmitrijs2005/suggestionapp/internal/server/cache/redis"
	"github.com/dmitrijs2005/suggestionapp/internal/server/config"
	"github.com/dmitrijs2005/suggestionapp/internal/server/metrics"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/suggestionapp/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	cache   cache.Cache
	limiter *api.RateLimiter
	handler http.Handler
}

// NewApp opens the database, applies migrations and builds the stores and the
// HTTP handler. Call Run to serve.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, parseLevel(c.LogLevel))

	db, err := repomanager.OpenDB(ctx, c.DBDialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos, err := repomanager.New(c.DBDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newCache(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(reg)

	deps := services.Deps{
		DB:      db,
		Repos:   repos,
		Cache:   store,
		Logger:  logger,
		Metrics: recorder,
	}

	var limiter *api.RateLimiter
	if c.RateLimitPerMinute > 0 {
		rlc := api.DefaultRateLimiterConfig()
		rlc.Rate = rate.Limit(float64(c.RateLimitPerMinute) / 60)
		if c.RateLimitBurst > 0 {
			rlc.Burst = c.RateLimitBurst
		}
		limiter = api.NewRateLimiter(rlc)
	}

	srv := api.NewServer(api.Deps{
		Categories:     services.NewCategoryService(deps, c.TagCacheTTL),
		Statuses:       services.NewStatusService(deps, c.TagCacheTTL),
		Users:          services.NewUserService(deps),
		Suggestions:    services.NewSuggestionService(deps, c.SuggestionCacheTTL),
		Logger:         logger,
		Metrics:        recorder,
		MetricsHandler: metrics.Handler(reg),
		Limiter:        limiter,
		JWTSecret:      c.SecretKey,
		TokenTTL:       c.TokenTTL,
		LoginKey:       c.LoginKey,
	})

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		cache:   store,
		limiter: limiter,
		handler: srv.Routes(),
	}, nil
}

func newCache(ctx context.Context, c *config.Config) (cache.Cache, error) {
	if c.CacheBackend == config.CacheBackendRedis {
		return rediscache.NewCache(ctx, &c.Redis)
	}
	return inmemory.NewCache(&inmemory.Config{CleanupInterval: c.CacheCleanupInterval}), nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	ln, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	app.serve(ctx, cancelFunc, ln)
}

// serve runs the HTTP server on ln until ctx ends. It returns only after
// Shutdown has drained in-flight requests or timed out.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, ln net.Listener) {
	s := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", ln.Addr().String())
	if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}

	<-drained
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the database, cache and rate limiter.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	if app.limiter != nil {
		app.limiter.Stop()
	}
	if c, ok := app.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error(ctx, "cache close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
