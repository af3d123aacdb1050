// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upsert implements the catalog's idempotent ensure_* write paths: one
method per entity kind, each returning the entity's id (0 meaning "target
table absent, no-op") and never partially writing related rows.

Architecture:

  - Engine is the aggregate root: every Ensure* method hangs off it, sharing
    one connection pool, one [schema.Cache]/[schema.Shape] pair, and one
    [entitycache.Cache] for the lifetime of a single pipeline run.
  - Schema polymorphism: every write path first consults Shape to choose
    between the modern and legacy-PHP column sets, falling back to a
    graceful no-op rather than crashing when an optional table is absent.
  - PK-sequence rescue: bulk-imported legacy ids routinely outpace a table's
    serial sequence. [Engine.withPKRescue] detects the resulting unique
    violation on a "<table>_pkey" constraint, resyncs the sequence, and
    retries the write exactly once.

Engine is constructed once per run and passed explicitly to every component
that needs it — never a package-level singleton, per the "explicit context
object" principle this pipeline follows throughout.
*/
package upsert

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gamecatalog/internal/catalog/entitycache"
	"github.com/taibuivan/gamecatalog/internal/catalog/schema"
	"github.com/taibuivan/gamecatalog/internal/platform/dberr"
)

// Engine holds the dependencies every Ensure* operation needs.
type Engine struct {
	pool     *pgxpool.Pool
	cache    *schema.Cache
	shape    *schema.Shape
	entities *entitycache.Cache
}

// New constructs an Engine. cache and shape are typically produced once at
// process start via [schema.NewCache]/[schema.DetectShape]; entities is
// fresh per run.
func New(pool *pgxpool.Pool, cache *schema.Cache, shape *schema.Shape, entities *entitycache.Cache) *Engine {
	return &Engine{pool: pool, cache: cache, shape: shape, entities: entities}
}

// withPKRescue runs write, and on a unique violation against "<table>_pkey"
// resyncs table's serial sequence to MAX(id) and retries write exactly once.
// This handles bulk-imported rows whose explicit ids outpace the sequence.
func (e *Engine) withPKRescue(ctx context.Context, table string, write func(ctx context.Context) (int64, error)) (int64, error) {
	id, err := write(ctx)
	if err == nil {
		return id, nil
	}

	if !dberr.IsUniqueViolation(err) {
		return 0, err
	}
	if dberr.ConstraintName(err) != table+"_pkey" {
		return 0, err
	}

	rescueSQL := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 0) + 1 FROM %s), false)`,
		table, table,
	)
	if _, rescueErr := e.pool.Exec(ctx, rescueSQL); rescueErr != nil {
		return 0, fmt.Errorf("upsert: pk rescue for %s: %w (original: %v)", table, rescueErr, err)
	}

	return write(ctx)
}
