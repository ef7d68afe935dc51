// Package main is the entry point for the packing list API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/packlist/backend/internal/auth"
	"github.com/pkordes/packlist/backend/internal/config"
	"github.com/pkordes/packlist/backend/internal/handler"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/middleware"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
	"github.com/pkordes/packlist/backend/internal/service"
	"github.com/pkordes/packlist/backend/internal/weather"
	"github.com/pkordes/packlist/backend/migrations"
	"github.com/pkordes/packlist/backend/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadEnvFile(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), pool, logger); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	// --- Caches and metrics ----------------------------------------------
	m := metrics.New()
	cache := querycache.New()
	janitor := querycache.NewJanitor(cache, logger)
	if err := janitor.Start(cfg.CacheSweepInterval); err != nil {
		slog.Error("failed to start cache janitor", "error", err)
		os.Exit(1)
	}
	defer janitor.Stop()

	// --- Weather ----------------------------------------------------------
	httpClient := &http.Client{Timeout: cfg.WeatherTimeout}
	meteo := weather.NewOpenMeteo(cfg.ForecastURL, cfg.ArchiveURL, httpClient, logger)
	fetcher := weather.NewFetcher(meteo,
		weather.WithLocation(cfg.WeatherTimezone),
		weather.WithHorizonDays(cfg.ForecastHorizonDays),
	)
	geocoder := weather.NewGeocoder(cfg.GeocodingURL, httpClient, cfg.GeocodeRPS, logger)

	// --- Repos and services ----------------------------------------------
	trips := repo.NewTripRepo(pool)
	items := repo.NewItemRepo(pool)
	bags := repo.NewBagRepo(pool)
	activities := repo.NewActivityRepo(pool)
	transactor := repo.NewTransactor(pool)

	weatherSvc := service.NewWeatherService(trips, repo.NewWeatherCacheRepo(pool), fetcher, cache, cfg.PreviewTTL, m, logger)
	activitySvc := service.NewActivityService(activities, cache, m, logger)

	srv := handler.NewServer(handler.Services{
		Trips:       service.NewTripService(trips, transactor, weatherSvc, cache, m, logger),
		Items:       service.NewItemService(trips, items, bags, cache, m, logger),
		Bags:        service.NewBagService(trips, bags, items, cache, m, logger),
		Templates:   service.NewTemplateService(repo.NewTemplateRepo(pool), transactor, cache, m, logger),
		Activities:  activitySvc,
		Categories:  service.NewCategoryService(repo.NewCategoryRepo(pool), cache, m, logger),
		Profile:     service.NewProfileService(repo.NewProfileRepo(pool), cache, m, logger),
		Weather:     weatherSvc,
		Suggestions: service.NewSuggestionService(trips, activities, weatherSvc),
		Export:      service.NewExportService(trips, items, bags),
		Geocoder:    geocoder,
		Events:      cache,
		OpenAPI:     spec.OpenAPI,
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → RequestLog →
	// Recoverer → CORS → MaxBodySize.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRequestLog(logger, m))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", m.Handler())
	r.Mount("/", srv.Routes(middleware.NewAuthHandler(auth.NewVerifier(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The event stream clears its own write deadline.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// Event streams never finish on their own.
	httpSrv.RegisterOnShutdown(srv.CloseStreams)

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending migrations through a database/sql view of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		log.Info("migration applied", "version", res.Source.Version, "file", res.Source.Path, "duration", res.Duration)
	}
	return nil
}
