// Package main is the entry point for the Lancaster Identity server.
// Lancaster Identity is a user account and session service exposing a
// JSON HTTP API for registration, account management, and login.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/lancaster-identity/internal/config"
	"github.com/prn-tf/lancaster-identity/internal/handler"
	"github.com/prn-tf/lancaster-identity/internal/pkg/metrics"
	"github.com/prn-tf/lancaster-identity/internal/repository"
	"github.com/prn-tf/lancaster-identity/internal/repository/postgres"
	"github.com/prn-tf/lancaster-identity/internal/repository/sqlite"
	"github.com/prn-tf/lancaster-identity/internal/service"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "lancaster-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Lancaster Identity server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	userRepo, dbHealth, dbClose, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer dbClose()

	// Session store
	sessionStore, storeClose, err := openSessionStore(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer storeClose()

	// Services
	userService := service.NewUserService(userRepo, sessionStore, logger)
	sessionService := service.NewSessionService(userRepo, sessionStore, cfg.Session.TTL, logger)

	// Metrics
	var apiMetrics *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		apiMetrics = metrics.New(registry)
		metricsHandler = metrics.Handler(registry)
	}

	// HTTP
	router := handler.NewRouter(handler.RouterConfig{
		UserHandler:    handler.NewUserHandler(userService, logger),
		AuthHandler:    handler.NewAuthHandler(sessionService, cfg.Session.TTL, logger),
		Metrics:        apiMetrics,
		MetricsHandler: metricsHandler,
		Database:       dbHealth,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newLogger builds the root logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// openDatabase connects to the configured database, runs migrations,
// and returns the user repository plus health and close hooks.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (repository.UserRepository, handler.HealthChecker, func(), error) {
	if cfg.IsEmbedded() {
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			JournalMode:     cfg.JournalMode,
			BusyTimeout:     cfg.BusyTimeout,
			SynchronousMode: cfg.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewUserRepository(db), db, func() { _ = db.Close() }, nil
	}

	db, err := postgres.NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return postgres.NewUserRepository(db), db, func() { _ = db.Close() }, nil
}

// openSessionStore builds the session store: Redis when enabled,
// otherwise an in-process store.
func openSessionStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (session.Store, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr()).Msg("connected to Redis session store")
	return session.NewRedisStore(client), func() { _ = client.Close() }, nil
}
