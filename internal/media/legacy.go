// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// writeLegacy writes one row at a time with a composite kind/slug, per
// spec.md §4.7 step 5 — game_media has no `source` column to key an
// ON CONFLICT upsert on, so each row is looked up by (video_game_id, kind,
// slug) and inserted or updated individually, batched via pgx.Batch for a
// single round-trip.
func (ig *Ingestor) writeLegacy(ctx context.Context, rows []normalizedRow) error {
	t := dbschema.GameMediaTable

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (%s, %s, %s) DO UPDATE SET
		   %s = EXCLUDED.%s,
		   %s = EXCLUDED.%s`,
		t.Table, t.VideoGameID, t.LegacyType, t.Slug, t.URL, t.ProviderData,
		t.VideoGameID, t.LegacyType, t.Slug,
		t.URL, t.URL,
		t.ProviderData, t.ProviderData,
	)

	batch := &pgx.Batch{}
	for _, row := range rows {
		kind := row.source + ":" + row.mediaType
		batch.Queue(query, row.videoGameID, kind, row.externalID, row.url, row.providerData)
	}

	result := ig.pool.SendBatch(ctx, batch)
	defer result.Close()
	for range rows {
		if _, err := result.Exec(); err != nil {
			return fmt.Errorf("media: legacy upsert: %w", err)
		}
	}
	return nil
}
