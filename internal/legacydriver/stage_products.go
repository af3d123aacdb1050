// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taibuivan/gamecatalog/internal/catalog/slugkit"
)

// runProductsStage streams the snapshot's products table, resumable by the
// "products" cursor checkpoint — stage 4 of spec.md §4.8. Every
// CHECKPOINT_EVERY rows (default 1000) the cursor is saved, so a killed run
// resumes from the last committed id rather than id 0.
func (c *Context) runProductsStage(ctx context.Context) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "products")
	if err != nil {
		return err
	}
	if !hasTable {
		c.Log.Info("products_stage_skipped_no_source_table")
		return nil
	}

	minID, err := c.Checkpoints.Cursor(ctx, "products", c.Import.Resume)
	if err != nil {
		return err
	}
	if c.Import.ProductIDMin > minID {
		minID = c.Import.ProductIDMin
	}

	checkpointEvery := c.Import.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 1000
	}

	rows, err := c.Snapshot.QueryContext(ctx,
		`SELECT id, slug, name, category FROM products WHERE id > ? ORDER BY id`, minID)
	if err != nil {
		return fmt.Errorf("legacydriver: query products: %w", err)
	}
	defer rows.Close()

	var lastID int64
	processed := 0
	for rows.Next() {
		var legacyID int64
		var slug, name sql.NullString
		var category sql.NullString
		if err := rows.Scan(&legacyID, &slug, &name, &category); err != nil {
			return fmt.Errorf("legacydriver: scan products row: %w", err)
		}

		resolvedName := name.String
		if resolvedName == "" {
			resolvedName = fmt.Sprintf("legacy product %d", legacyID)
		}
		resolvedCategory := category.String
		if resolvedCategory == "" {
			resolvedCategory = "software"
		}

		resolvedSlug := slug.String
		if resolvedSlug == "" {
			resolvedSlug = slugkit.Slug(resolvedName)
		}
		resolvedSlug = slugkit.UniqueSlug(resolvedSlug, c.slugTaken)
		c.rememberSlug(resolvedSlug)

		productID, err := c.Engine.EnsureProductNamed(ctx, resolvedSlug, resolvedName, resolvedCategory)
		if err != nil {
			return fmt.Errorf("legacydriver: ensure product %d: %w", legacyID, err)
		}
		c.putProductID(legacyID, productID)

		lastID = legacyID
		processed++
		if processed%checkpointEvery == 0 {
			if err := c.Checkpoints.SaveCursor(ctx, "products", lastID); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if lastID > 0 {
		if err := c.Checkpoints.SaveCursor(ctx, "products", lastID); err != nil {
			return err
		}
	}

	c.Log.Info("products_stage_complete", "rows", processed)
	return nil
}
