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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/peoplesbranch/scorecard/internal/api"
	"github.com/peoplesbranch/scorecard/internal/catalogcache"
	"github.com/peoplesbranch/scorecard/internal/config"
	"github.com/peoplesbranch/scorecard/internal/db"
	"github.com/peoplesbranch/scorecard/internal/legislation"
	"github.com/peoplesbranch/scorecard/internal/metrics"
	"github.com/peoplesbranch/scorecard/internal/points"
	"github.com/peoplesbranch/scorecard/internal/polls"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	// NOTE: database.Close() called explicitly in shutdown sequence below

	if err := db.RunMigrations(ctx, database.Pool()); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	health := map[string]api.HealthChecker{"database": database}

	// Title catalog, optionally cached in Redis across requests
	var catalog legislation.Catalog = legislation.NewPostgresCatalog(database.Pool())
	rdb, err := catalogcache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		catalog = catalogcache.New(rdb, catalog, cfg.CatalogCacheTTL)
		health["redis"] = rdb
		slog.Info("Title catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
	}

	digests := legislation.NewService(legislation.NewStore(database.Pool()), catalog, m)

	pollStore := polls.NewPostgresStore(database.Pool())
	ledger := polls.NewLedger(pollStore, points.NewLedger(database.Pool()), polls.LedgerConfig{
		Action:  cfg.PollVoteAction,
		Timeout: cfg.CastTimeout,
	}, m)

	routerResult := api.NewRouter(&api.RouterConfig{
		Health:          health,
		Digester:        digests,
		Caster:          ledger,
		Analyzer:        polls.NewAnalyzer(pollStore),
		DefaultCongress: cfg.Congress,
		Gatherer:        reg,
		CORSOrigins:     cfg.CORSOrigins,
		Development:     cfg.Env == "development",
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routerResult.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	routerResult.RateLimiters.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if rdb != nil {
		_ = rdb.Close()
	}
	database.Close()

	slog.Info("Server exited")
}
