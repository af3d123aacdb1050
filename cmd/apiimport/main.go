// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Apiimport is the long-running entry point for the persisted-query API
Driver: it polls the PlayStation Store catalog per configured locale,
enriches each product with rating/detail data, and registers each observed
product as a provider item through the shared Upsert Engine (the enriched
media and rating data is not written), while also serving the
ops HTTP surface (liveness/readiness probes, read-only refdata lookups)
process supervisors expect from a long-running service.

Usage:

	go run cmd/apiimport/main.go

Startup Sequence:

 1. Logger: structured JSON logging (slog).
 2. Config: load and validate environment variables.
 3. Storage: connect to Postgres (and optionally Redis, for the FX/BTC cache).
 4. Introspection: build the Schema Cache/Shape once for the process lifetime.
 5. Health/refdata wiring.
 6. API Driver wiring: only when PS_STORE_REGIONS names at least one
    locale; runs as a background poll loop independent of the HTTP
    server's lifecycle.
 7. Server: bind the HTTP listener and handle graceful shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/taibuivan/gamecatalog/internal/api"
	"github.com/taibuivan/gamecatalog/internal/apidriver"
	"github.com/taibuivan/gamecatalog/internal/catalog/entitycache"
	"github.com/taibuivan/gamecatalog/internal/catalog/refdata"
	catalogschema "github.com/taibuivan/gamecatalog/internal/catalog/schema"
	"github.com/taibuivan/gamecatalog/internal/catalog/upsert"
	"github.com/taibuivan/gamecatalog/internal/media"
	"github.com/taibuivan/gamecatalog/internal/platform/config"
	"github.com/taibuivan/gamecatalog/internal/platform/constants"
	pgstore "github.com/taibuivan/gamecatalog/internal/platform/postgres"
	"github.com/taibuivan/gamecatalog/internal/platform/ratecache"
)

// apiDriverPollInterval is how often the API Driver sweeps its configured
// locales for fresh category-grid pages.
const apiDriverPollInterval = 6 * time.Hour

// defaultCategoryID is the PlayStation Store root category the poll loop
// walks when PS_STORE_REGIONS is set but no category override is given.
const defaultCategoryID = "STORE-MSF75508-FULLGAMES"

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	log.Info("service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
	}
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DB.DSN(), log, pgstore.FastIngestOptions{})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. FX/BTC rate cache (optional: Redis-backed when configured)
	var rateClient *ratecache.Client
	if cfg.DB.RedisURL != "" {
		rateClient, err = ratecache.NewClient(startupCtx, cfg.DB.RedisURL, time.Hour, log)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if cerr := rateClient.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// # 5. Schema Introspection
	schemaCache := catalogschema.NewCache(pool)
	shape, err := catalogschema.DetectShape(startupCtx, schemaCache)
	if err != nil {
		return fmt.Errorf("detect schema shape: %w", err)
	}
	log.Info("schema_shape_detected", slog.String("kind", string(shape.Kind)))

	// # 6. Health Wiring
	healthDeps := api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
	}
	if rateClient != nil {
		healthDeps.CheckCache = func() error {
			return rateClient.HealthCheck(context.Background())
		}
	}
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// # 7. Refdata Wiring
	refdataSvc := refdata.NewService(pool)
	refdataHdl := refdata.NewHandler(refdataSvc)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Refdata:   refdataHdl,
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, handlers)

	// # 7b. API Driver Wiring (disabled entirely when no locales are configured)
	locales := splitLocales(cfg.API.Regions)
	if len(locales) > 0 {
		entities := entitycache.New()
		engine := upsert.New(pool, schemaCache, shape, entities)
		mediaIngestor := media.NewIngestor(pool, schemaCache, shape)

		providerID, err := engine.EnsureProvider(startupCtx, "playstation-store", "PlayStation Store", "storefront")
		if err != nil {
			return fmt.Errorf("ensure playstation-store provider: %w", err)
		}

		client := apidriver.New(cfg.API, log)
		defer func() {
			if cerr := client.Close(); cerr != nil {
				log.Error("apidriver_close_error", slog.Any("error", cerr))
			}
		}()
		driver := apidriver.NewDriver(client, engine, mediaIngestor, cfg.API, log)

		go runAPIDriverPollLoop(appCtx, driver, providerID, locales, log)
	} else {
		log.Info("apidriver_disabled", slog.String("reason", "PS_STORE_REGIONS not set"))
	}

	// # 8. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("apiimport_ops_server_running", slog.String("port", cfg.ServerPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	appCancel()
	log.Info("shutting_down_ops_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}

// splitLocales parses PS_STORE_REGIONS's comma-separated locale list,
// trimming whitespace and dropping empty entries.
func splitLocales(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// runAPIDriverPollLoop sweeps every configured locale's category grid on
// apiDriverPollInterval, enriching each observed product, registering it as
// a provider item, and logging how many products were enriched; no media
// rows are written. It runs until ctx is cancelled; a failure on one
// locale is logged and does not interrupt the others or the next sweep.
func runAPIDriverPollLoop(ctx context.Context, driver *apidriver.Driver, providerID int64, locales []string, log *slog.Logger) {
	sweep := func() {
		for _, locale := range locales {
			items, err := driver.FetchCategoryGrid(ctx, locale, defaultCategoryID)
			if err != nil {
				log.Error("apidriver_fetch_failed", slog.String("locale", locale), slog.Any("error", err))
				continue
			}

			enriched, err := driver.EnrichProducts(ctx, locale, items)
			if err != nil {
				log.Error("apidriver_enrich_failed", slog.String("locale", locale), slog.Any("error", err))
				continue
			}

			if _, err := driver.RegisterProviderItems(ctx, providerID, items); err != nil {
				log.Error("apidriver_register_failed", slog.String("locale", locale), slog.Any("error", err))
			}

			log.Info("apidriver_sweep_complete", slog.String("locale", locale), slog.Int("products", len(enriched)))
		}
	}

	sweep()

	ticker := time.NewTicker(apiDriverPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
