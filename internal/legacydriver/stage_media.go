// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
)

// mediaSource describes one legacy media table to migrate into game_media.
type mediaSource struct {
	table      string
	kind       string // media_type passed to the Media Ingestor
	source     string // provider label
	chunkSize  int
	checkpoint string // own cursor key, for gb_images' independent resumption
}

// runMediaStage migrates game_images, game_videos, gb_images (chunked by
// its own gb_images_id checkpoint, default 2000/chunk), and gb_videos into
// game_media via the Media Ingestor — stage 6 of spec.md §4.8.
func (c *Context) runMediaStage(ctx context.Context) error {
	gbChunk := c.Import.GBImagesLimit
	if gbChunk <= 0 {
		gbChunk = 2000
	}

	sources := []mediaSource{
		{table: "game_images", kind: "cover", source: "legacy", chunkSize: 500, checkpoint: "game_images_id"},
		{table: "game_videos", kind: "trailer", source: "legacy", chunkSize: 500, checkpoint: "game_videos_id"},
		{table: "gb_images", kind: "screenshot", source: "giantbomb", chunkSize: gbChunk, checkpoint: "gb_images_id"},
		{table: "gb_videos", kind: "trailer", source: "giantbomb", chunkSize: 500, checkpoint: "gb_videos_id"},
	}

	for _, src := range sources {
		if err := c.migrateMediaTable(ctx, src); err != nil {
			return fmt.Errorf("legacydriver: migrate %s: %w", src.table, err)
		}
	}
	return nil
}

func (c *Context) migrateMediaTable(ctx context.Context, src mediaSource) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, src.table)
	if err != nil {
		return err
	}
	if !hasTable {
		c.Log.Info("media_table_skipped_no_source_table", "table", src.table)
		return nil
	}

	minID, err := c.Checkpoints.Cursor(ctx, src.checkpoint, c.Import.Resume)
	if err != nil {
		return err
	}

	rows, err := c.Snapshot.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, video_game_id, external_id, url, title FROM %s WHERE id > ? ORDER BY id`, src.table,
	), minID)
	if err != nil {
		return fmt.Errorf("query %s: %w", src.table, err)
	}
	defer rows.Close()

	var buf []model.MediaRow
	var lastID int64
	total := 0

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if _, err := c.Media.Ingest(ctx, buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	for rows.Next() {
		var rowID, legacyVideoGameID int64
		var externalID, url, title sql.NullString
		if err := rows.Scan(&rowID, &legacyVideoGameID, &externalID, &url, &title); err != nil {
			return fmt.Errorf("scan %s row: %w", src.table, err)
		}
		if !url.Valid || url.String == "" {
			lastID = rowID
			continue
		}

		resolvedIDs := c.videoGamesForLegacy(legacyVideoGameID)
		extID := externalID.String
		if extID == "" {
			extID = fmt.Sprintf("%s-%d", src.table, rowID)
		}
		var titlePtr *string
		if title.Valid && title.String != "" {
			titlePtr = &title.String
		}

		for _, vgID := range resolvedIDs {
			buf = append(buf, model.MediaRow{
				VideoGameID: vgID,
				Source:      src.source,
				MediaType:   src.kind,
				ExternalID:  extID,
				URL:         url.String,
				Title:       titlePtr,
			})
		}

		lastID = rowID
		total++
		if len(buf) >= src.chunkSize {
			if err := flush(); err != nil {
				return err
			}
			if err := c.Checkpoints.SaveCursor(ctx, src.checkpoint, lastID); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := flush(); err != nil {
		return err
	}
	if lastID > 0 {
		if err := c.Checkpoints.SaveCursor(ctx, src.checkpoint, lastID); err != nil {
			return err
		}
	}

	c.Log.Info("media_table_migrated", "table", src.table, "rows", total)
	return nil
}
