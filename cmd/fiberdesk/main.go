package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/fiberdesk/fiberdesk/internal/app"
	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/observability"
	"github.com/fiberdesk/fiberdesk/internal/platform/cache"
	"github.com/fiberdesk/fiberdesk/internal/platform/db"
	"github.com/fiberdesk/fiberdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var pool *pgxpool.Pool
	if cfg.DataSource == app.DataSourcePostgres {
		pool, err = db.New(ctx, cfg.PGDSN, 0)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router, err := app.NewServer(ctx, app.Dependencies{
		Config:    cfg,
		Logger:    logger,
		Redis:     redisClient,
		Pool:      pool,
		Metrics:   observability.NewMetrics(),
		Jobs:      jobClient,
		Inspector: inspector,
	})
	if err != nil {
		logger.Error("build server", slog.Any("error", err))
		os.Exit(1)
	}

	invalidations := directory.NewCache(redisClient, cfg.CacheTTL)
	if err := invalidations.ListenForInvalidation(ctx, func(version int64) {
		logger.Info("directory data refreshed", slog.Int64("version", version))
	}); err != nil {
		logger.Warn("listen for directory invalidations", slog.Any("error", err))
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr),
			slog.String("auth_mode", cfg.AuthMode), slog.String("data_source", cfg.DataSource))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
