// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"fmt"
)

// runLinksStage builds the legacy product_id -> []platform_id map consulted
// by the video_games stage — stage 3 of spec.md §4.8. Purely an in-memory
// accumulation; nothing is written to Postgres here.
func (c *Context) runLinksStage(ctx context.Context) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "product_platform_links")
	if err != nil {
		return err
	}
	if !hasTable {
		c.Log.Info("links_stage_skipped_no_source_table")
		return nil
	}

	rows, err := c.Snapshot.QueryContext(ctx, `SELECT product_id, platform_id FROM product_platform_links ORDER BY product_id`)
	if err != nil {
		return fmt.Errorf("legacydriver: query product_platform_links: %w", err)
	}
	defer rows.Close()

	acc := make(map[int64][]int64)
	count := 0
	for rows.Next() {
		var productID, platformID int64
		if err := rows.Scan(&productID, &platformID); err != nil {
			return fmt.Errorf("legacydriver: scan product_platform_links row: %w", err)
		}
		acc[productID] = append(acc[productID], platformID)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for productID, platformIDs := range acc {
		c.putProductPlatforms(productID, platformIDs)
	}

	c.Log.Info("product_platform_links_built", "rows", count, "products", len(acc))
	return nil
}
