// Package app wires the server runtime: config, logging, storage, HTTP
// routes, middleware, and metrics.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"aegis/cmd/identity"
	authapi "aegis/cmd/internal/auth/api"
	"aegis/cmd/security/password"
	"aegis/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Closer is a small app-level lifecycle abstraction so DB-backed resources
// can be closed gracefully.
type Closer interface {
	Close(ctx context.Context) error
}

// nopCloser is used for in-memory store mode.
type nopCloser struct{}

func (nopCloser) Close(_ context.Context) error { return nil }

type poolCloser struct {
	pool *pgxpool.Pool
}

func (c poolCloser) Close(_ context.Context) error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

// App is the server runtime: it owns the HTTP server wiring and storage
// lifecycle.
type App struct {
	cfg Config
	log Logger

	closer Closer

	dbPool    *pgxpool.Pool
	dbEnabled bool

	auth    *authapi.Handler
	metrics *Metrics
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	store, closer, dbPool, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	hasher, err := password.FromEnv()
	if err != nil {
		closer.Close(context.Background())
		return nil, err
	}

	tokenCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		closer.Close(context.Background())
		return nil, err
	}
	tokens, err := token.NewHS256Manager(tokenCfg)
	if err != nil {
		closer.Close(context.Background())
		return nil, err
	}

	svc, err := identity.NewService(log, store, hasher, tokens)
	if err != nil {
		closer.Close(context.Background())
		return nil, err
	}

	authHandler, err := authapi.NewHandler(log, svc, dbPool, authapi.LoadConfigFromEnv())
	if err != nil {
		closer.Close(context.Background())
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		closer:    closer,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		auth:      authHandler,
		metrics:   NewMetrics(),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.metrics)

	var handler http.Handler = mux
	handler = WithSecurityHeaders(handler)
	handler = WithCORS(handler, a.cfg.CORSAllowedOrigins)
	handler = a.metrics.WithMetrics(handler, mux)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between Postgres-backed persistence and the in-memory
// dev store.
func newStore(ctx context.Context, cfg Config, log Logger) (identity.Store, Closer, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), nopCloser{}, nil, false, nil
	}

	if cfg.MigrateOnStart {
		if err := RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, nil, false, err
		}
		log.Info("db.migrations.applied")
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, false, err
	}

	schema := strings.TrimSpace(cfg.DBSchema)
	if schema == "" {
		schema = "aegis"
	}
	store, err := identity.NewPostgresStore(pool, identity.WithSchema(schema))
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return store, poolCloser{pool: pool}, pool, true, nil
}
