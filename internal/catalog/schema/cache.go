// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema introspects the target Postgres database's actual catalog
shape at runtime, so the Upsert Engine can choose between a modern,
legacy-PHP, or hybrid write path without being told which one applies.

Core Responsibilities:

  - Memoization: every probe result is cached for the process lifetime in a
    [Cache], an explicitly constructed object passed to every consumer — never
    a package-level global — so tests can spin up independent caches against
    independent pools.
  - Visible-identifier resolution: all lookups resolve through
    pg_catalog.pg_table_is_visible, matching what unqualified SQL in the same
    search_path would actually resolve to. A schema-wide LIKE over
    information_schema would produce false positives when a shadowing schema
    sits earlier on the search path.
*/
package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Cache memoizes table/column/enum-label probes against a single Postgres
// connection pool for the lifetime of the process.
type Cache struct {
	pool *pgxpool.Pool

	tables  sync.Map // string(tableName) -> bool
	columns sync.Map // string(tableName+"."+columnName) -> bool
	udts    sync.Map // string(tableName+"."+columnName) -> (string, bool)
	enums   sync.Map // string(typeName+"."+label) -> bool
}

// NewCache constructs a Cache bound to pool. It performs no queries itself;
// probes are resolved lazily and memoized on first use.
func NewCache(pool *pgxpool.Pool) *Cache {
	return &Cache{pool: pool}
}

// HasTable reports whether table is visible on the current search_path.
func (c *Cache) HasTable(ctx context.Context, table string) (bool, error) {
	if v, ok := c.tables.Load(table); ok {
		return v.(bool), nil
	}

	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_catalog.pg_class c
			JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
			WHERE c.relname = $1
			  AND c.relkind IN ('r', 'p', 'v', 'm')
			  AND pg_catalog.pg_table_is_visible(c.oid)
		)`

	var exists bool
	if err := c.pool.QueryRow(ctx, q, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("schema: has_table(%s): %w", table, err)
	}

	c.tables.Store(table, exists)
	return exists, nil
}

// HasColumn reports whether table (resolved to its visible identifier)
// carries column.
func (c *Cache) HasColumn(ctx context.Context, table, column string) (bool, error) {
	key := table + "." + column
	if v, ok := c.columns.Load(key); ok {
		return v.(bool), nil
	}

	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_catalog.pg_attribute a
			JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
			WHERE c.relname = $1
			  AND a.attname = $2
			  AND a.attnum > 0
			  AND NOT a.attisdropped
			  AND pg_catalog.pg_table_is_visible(c.oid)
		)`

	var exists bool
	if err := c.pool.QueryRow(ctx, q, table, column).Scan(&exists); err != nil {
		return false, fmt.Errorf("schema: has_column(%s.%s): %w", table, column, err)
	}

	c.columns.Store(key, exists)
	return exists, nil
}

// ColumnUDT returns the enum type name of table.column, and whether the
// column exists. A plain scalar column (text, integer, ...) returns ("", true, nil) with ok
// reflecting only existence of the column — callers check the returned name
// for emptiness to distinguish "exists but not an enum" from "missing".
func (c *Cache) ColumnUDT(ctx context.Context, table, column string) (udtName string, exists bool, err error) {
	key := table + "." + column
	if v, ok := c.udts.Load(key); ok {
		pair := v.([2]string)
		return pair[0], pair[1] == "1", nil
	}

	const q = `
		SELECT CASE WHEN t.typtype = 'e' THEN t.typname::text ELSE '' END
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
		WHERE c.relname = $1
		  AND a.attname = $2
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		  AND pg_catalog.pg_table_is_visible(c.oid)`

	var typeName string
	scanErr := c.pool.QueryRow(ctx, q, table, column).Scan(&typeName)
	if scanErr != nil {
		if scanErr.Error() == "no rows in result set" {
			c.udts.Store(key, [2]string{"", "0"})
			return "", false, nil
		}
		return "", false, fmt.Errorf("schema: column_udt(%s.%s): %w", table, column, scanErr)
	}

	c.udts.Store(key, [2]string{typeName, "1"})
	return typeName, true, nil
}

// EnumHasLabel reports whether the Postgres enum type typeName carries
// label as one of its values.
func (c *Cache) EnumHasLabel(ctx context.Context, typeName, label string) (bool, error) {
	key := typeName + "." + label
	if v, ok := c.enums.Load(key); ok {
		return v.(bool), nil
	}

	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_catalog.pg_enum e
			JOIN pg_catalog.pg_type t ON t.oid = e.enumtypid
			WHERE t.typname = $1
			  AND e.enumlabel = $2
		)`

	var exists bool
	if err := c.pool.QueryRow(ctx, q, typeName, label).Scan(&exists); err != nil {
		return false, fmt.Errorf("schema: enum_has_label(%s, %s): %w", typeName, label, err)
	}

	c.enums.Store(key, exists)
	return exists, nil
}
