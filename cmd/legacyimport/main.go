// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Legacyimport is the one-shot batch entry point for the Legacy Snapshot
Driver: it reads a single-file SQLite export of the Laravel-era catalog and
writes it into the target Postgres schema through the Upsert Engine and the
Media Ingestor, then runs the Verifier before exiting.

Usage:

	go run cmd/legacyimport/main.go <legacy-snapshot-path> [<db-url>]

The db-url positional argument overrides SUPABASE_DB_SESSION_URL/
SUPABASE_DB_URL/DATABASE_URL from the environment when present. Exit code 0
on success (including when the Verifier logs only downgraded/non-fatal
findings), non-zero on any unrecovered error or a fatal Verifier finding.

Startup Sequence:

 1. Logger: structured JSON logging (slog).
 2. Config: load and validate environment variables.
 3. Args: resolve the snapshot path and optional db-url override.
 4. Storage: open the SQLite snapshot read-only; connect to Postgres.
 5. Introspection: build the Schema Cache/Shape once for the run.
 6. Wiring: construct the Upsert Engine, Media Ingestor, Entity Cache.
 7. Run: execute every Legacy Snapshot Driver stage to completion or the
    next checkpoint.
 8. Verify: run the Verifier and fail the process on any fatal finding.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/gamecatalog/internal/catalog/entitycache"
	catalogschema "github.com/taibuivan/gamecatalog/internal/catalog/schema"
	"github.com/taibuivan/gamecatalog/internal/catalog/upsert"
	"github.com/taibuivan/gamecatalog/internal/catalog/verify"
	"github.com/taibuivan/gamecatalog/internal/legacydriver"
	"github.com/taibuivan/gamecatalog/internal/media"
	"github.com/taibuivan/gamecatalog/internal/platform/config"
	"github.com/taibuivan/gamecatalog/internal/platform/constants"
	pgstore "github.com/taibuivan/gamecatalog/internal/platform/postgres"
	"github.com/taibuivan/gamecatalog/internal/platform/sqlite"
)

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
	log.Info("legacyimport_initializing")

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

	// # 3. Positional args: <legacy-snapshot-path> [<db-url>]
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: legacyimport <legacy-snapshot-path> [<db-url>]")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		return fmt.Errorf("legacyimport: missing required <legacy-snapshot-path> argument")
	}
	snapshotPath := flag.Arg(0)
	dbURL := cfg.DB.DSN()
	if flag.NArg() >= 2 {
		dbURL = flag.Arg(1)
	}
	if dbURL == "" {
		return fmt.Errorf("legacyimport: no database URL: supply <db-url> or set SUPABASE_DB_SESSION_URL/SUPABASE_DB_URL/DATABASE_URL")
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 4. Storage
	snapshot, err := sqlite.Open(startupCtx, snapshotPath)
	if err != nil {
		return fmt.Errorf("open legacy snapshot: %w", err)
	}
	defer func() {
		if cerr := snapshot.Close(); cerr != nil {
			log.Error("snapshot_close_error", slog.Any("error", cerr))
		}
	}()

	pool, err := pgstore.NewPool(startupCtx, dbURL, log, pgstore.FastIngestOptions{
		Enabled:            cfg.Perf.FastIngest,
		OneConn:            cfg.Perf.FastIngestOneConn,
		WorkMemMB:          cfg.Perf.FastIngestWorkMemMB,
		DisableSessionSwap: cfg.DB.DisableSessionSwap,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 5. Schema Introspection
	schemaCache := catalogschema.NewCache(pool)
	shape, err := catalogschema.DetectShape(startupCtx, schemaCache)
	if err != nil {
		return fmt.Errorf("detect schema shape: %w", err)
	}
	log.Info("schema_shape_detected", slog.String("kind", string(shape.Kind)))

	// # 6. Wiring
	entities := entitycache.New()
	engine := upsert.New(pool, schemaCache, shape, entities)
	mediaIngestor := media.NewIngestor(pool, schemaCache, shape)

	importCtx := legacydriver.New(pool, snapshot, schemaCache, shape, engine, mediaIngestor, entities, cfg.Import, log)

	// # 7. Run
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	log.Info("legacydriver_run_starting", slog.String("snapshot", snapshotPath))
	if err := importCtx.Run(runCtx, cfg.Import.Reset); err != nil {
		return fmt.Errorf("legacydriver run: %w", err)
	}
	log.Info("legacydriver_run_complete")

	// # 8. Verify
	verifier := verify.New(pool, schemaCache, shape, cfg.Strictness)
	report, err := verifier.Run(runCtx)
	if err != nil {
		return fmt.Errorf("verifier run: %w", err)
	}
	for _, v := range report.Violations {
		level := slog.LevelWarn
		if v.Fatal {
			level = slog.LevelError
		}
		log.Log(runCtx, level, "verifier_violation",
			slog.String("invariant", v.Invariant), slog.String("detail", v.Detail),
			slog.Int64("count", v.Count), slog.Bool("fatal", v.Fatal))
	}
	for _, c := range report.Coverage {
		log.Info("verifier_coverage",
			slog.String("metric", c.Metric), slog.String("detail", c.Detail), slog.Int64("count", c.Count))
	}
	if report.HasFatal() {
		return fmt.Errorf("legacyimport: verifier reported fatal findings; see verifier_violation logs above")
	}

	log.Info("legacyimport_complete")
	return nil
}
