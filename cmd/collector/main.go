package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/stationledger/marketdata/internal/admin"
	"github.com/stationledger/marketdata/internal/collector"
	"github.com/stationledger/marketdata/internal/config"
	"github.com/stationledger/marketdata/internal/database"
	"github.com/stationledger/marketdata/internal/esi"
	"github.com/stationledger/marketdata/internal/notify"
	"github.com/stationledger/marketdata/internal/store"
	"github.com/stationledger/marketdata/internal/version"
)

func main() {
	// Optional .env for local development; config values expand from env.
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/collector.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"region_id", cfg.Station.RegionID,
		"station_id", cfg.Station.StationID,
		"esi_url", cfg.ESI.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Apply schema migrations before taking connections
	if err := database.Migrate(cfg.Database.Postgres); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)
	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Create upstream client, with an optional Redis response cache
	clientOpts := []esi.ClientOption{
		esi.WithLogger(logger),
		esi.WithTimeout(cfg.ESI.Timeout),
		esi.WithRetries(cfg.ESI.MaxRetries, cfg.ESI.RetryBackoff),
	}
	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.Cache.Addr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		clientOpts = append(clientOpts, esi.WithCache(esi.NewRedisCache(rdb, cfg.Cache.TTL)))
		logger.Info("response cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	}
	client := esi.NewClient(cfg.ESI.BaseURL, cfg.ESI.UserAgent, clientOpts...)

	st := store.New(pool, logger)
	coll := collector.New(cfg.Station, client, st, logger)

	var notifier collector.Notifier
	if cfg.Alerts.TelegramToken != "" {
		notifier = notify.NewTelegram(cfg.Alerts.TelegramToken, cfg.Alerts.ChatID, notify.WithLogger(logger))
		logger.Info("failure alerts enabled", "chat_id", cfg.Alerts.ChatID)
	}

	runner := collector.NewRunner(collector.RunnerConfig{
		Interval:       cfg.Station.CollectInterval,
		FailureStreak:  cfg.Alerts.FailureStreak,
		NotifyCooldown: cfg.Alerts.NotifyCooldown,
	}, coll, notifier, logger)

	// Start admin API
	adminServer := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: admin.NewServer(cfg.Station, st, runner, client, logger).Handler(),
	}
	go func() {
		logger.Info("starting admin server", "addr", cfg.Admin.Addr)
		if err := adminServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server error", "error", err)
		}
	}()

	// Start the collection schedule
	if err := runner.Start(ctx); err != nil {
		logger.Error("failed to start runner", "error", err)
		os.Exit(1)
	}

	logger.Info("collector running",
		"interval", cfg.Station.CollectInterval,
		"admin_url", "http://localhost"+cfg.Admin.Addr,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := runner.Stop(shutdownCtx); err != nil {
		logger.Error("runner did not stop cleanly", "error", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server did not stop cleanly", "error", err)
	}

	logger.Info("collector stopped")
}
