// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"database/sql"
	"fmt"
)

// runProvidersStage migrates the snapshot's video_game_sources table into
// the target providers table, one row per legacy source — stage 1 of
// spec.md §4.8.
func (c *Context) runProvidersStage(ctx context.Context) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "video_game_sources")
	if err != nil {
		return err
	}
	if !hasTable {
		c.Log.Info("providers_stage_skipped_no_source_table")
		return nil
	}

	rows, err := c.Snapshot.QueryContext(ctx, `SELECT id, slug, display_name, kind FROM video_game_sources ORDER BY id`)
	if err != nil {
		return fmt.Errorf("legacydriver: query video_game_sources: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var legacyID int64
		var slug, name, kind sql.NullString
		if err := rows.Scan(&legacyID, &slug, &name, &kind); err != nil {
			return fmt.Errorf("legacydriver: scan video_game_sources row: %w", err)
		}

		resolvedSlug := slug.String
		if resolvedSlug == "" {
			resolvedSlug = fmt.Sprintf("legacy-source-%d", legacyID)
		}
		resolvedName := name.String
		if resolvedName == "" {
			resolvedName = resolvedSlug
		}
		resolvedKind := kind.String
		if resolvedKind == "" {
			resolvedKind = "retailer_api"
		}

		if _, err := c.Engine.EnsureProvider(ctx, resolvedSlug, resolvedName, resolvedKind); err != nil {
			return fmt.Errorf("legacydriver: ensure provider %s: %w", resolvedSlug, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.Log.Info("providers_stage_complete", "rows", count)
	return nil
}

// sqliteHasTable reports whether name exists in the snapshot's sqlite_master.
// Legacy snapshots vary in which tables they carry (e.g. a media-only
// export lacks game_videos); every stage skips gracefully rather than
// failing when its source table is absent.
func sqliteHasTable(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
