// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sqlite opens the legacy snapshot file the Legacy Snapshot Driver
streams rows from — a single-file relational export of the Laravel-era
database, read-only for the lifetime of an import run.

Adapted from zaparoo-core's pkg/database/mediadb connection-parameter
convention, with the WAL/journal tuning dropped since this package never
writes: the snapshot file ships pre-built and is opened purely for
sequential/chunked reads.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// connParams configures the driver for read-heavy, single-writer-absent
// access: a busy timeout guards against the rare concurrent reader, and
// read-only mode plus query_only make SQLite reject any write through this
// connection.
const connParams = "?mode=ro&_busy_timeout=5000&_query_only=1"

// Open opens the snapshot file at path read-only. The caller owns the
// returned *sql.DB and must Close it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite: snapshot not found at %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+connParams)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	return db, nil
}
