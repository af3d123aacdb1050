// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// EnsureVideoGameTitle resolves or creates a VideoGameTitle under one of two
// linkage modes:
//
//   - Legacy linkage, via product_id and/or video_game_id: if
//     video_game_titles has a video_game_id column and the target game
//     already has a title, the existing title id is returned rather than
//     inserting a second row; whether that column is unique is not checked.
//   - Source linkage, via (video_game_source_id, vg_source_item_id): looked
//     up by that pair; on a match, raw_title/normalized_title/locale/
//     metadata/version_hint/product_id/video_game_id are best-effort
//     refreshed and video_game_ids (a dedup-on-append jsonb array) is
//     merged; on a miss, a fresh row is inserted after verifying the
//     referenced product exists.
func (e *Engine) EnsureVideoGameTitle(ctx context.Context, t model.VideoGameTitle) (int64, error) {
	hasTable, err := e.cache.HasTable(ctx, dbschema.VideoGameTitleTable.Table)
	if err != nil {
		return 0, err
	}
	if !hasTable {
		return 0, nil
	}

	if t.VideoGameID != nil {
		if id, ok, lookupErr := e.titleForExistingGame(ctx, *t.VideoGameID); lookupErr != nil {
			return 0, lookupErr
		} else if ok {
			return id, nil
		}
	}

	if t.VideoGameSourceID != nil && t.VgSourceItemID != nil {
		return e.ensureTitleBySourceLinkage(ctx, t)
	}

	return e.insertVideoGameTitle(ctx, t)
}

// titleForExistingGame checks whether video_game_id already owns a title
// (whenever video_game_titles has that column, unique or not); if so,
// returns its id so a second insert attempt is never made.
func (e *Engine) titleForExistingGame(ctx context.Context, videoGameID int64) (int64, bool, error) {
	hasColumn, err := e.cache.HasColumn(ctx, dbschema.VideoGameTitleTable.Table, dbschema.VideoGameTitleTable.VideoGameID)
	if err != nil || !hasColumn {
		return 0, false, err
	}

	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 LIMIT 1`,
			dbschema.VideoGameTitleTable.ID, dbschema.VideoGameTitleTable.Table, dbschema.VideoGameTitleTable.VideoGameID),
		videoGameID,
	).Scan(&id)
	if lookupErr == nil {
		return id, true, nil
	}
	if lookupErr == pgx.ErrNoRows {
		return 0, false, nil
	}
	return 0, false, lookupErr
}

func (e *Engine) ensureTitleBySourceLinkage(ctx context.Context, t model.VideoGameTitle) (int64, error) {
	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
			dbschema.VideoGameTitleTable.ID, dbschema.VideoGameTitleTable.Table,
			dbschema.VideoGameTitleTable.VideoGameSourceID, dbschema.VideoGameTitleTable.VgSourceItemID),
		*t.VideoGameSourceID, *t.VgSourceItemID,
	).Scan(&id)

	switch lookupErr {
	case nil:
		if err := e.refreshVideoGameTitle(ctx, id, t); err != nil {
			return 0, err
		}
		return id, nil
	case pgx.ErrNoRows:
		if t.ProductID != nil {
			if exists, err := e.productExists(ctx, *t.ProductID); err != nil {
				return 0, err
			} else if !exists {
				return 0, fmt.Errorf("upsert: ensure_video_game_title: product %d does not exist", *t.ProductID)
			}
		}
		return e.insertVideoGameTitle(ctx, t)
	default:
		return 0, lookupErr
	}
}

func (e *Engine) productExists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`, dbschema.ProductTable.Table, dbschema.ProductTable.ID),
		productID,
	).Scan(&exists)
	return exists, err
}

func (e *Engine) refreshVideoGameTitle(ctx context.Context, id int64, t model.VideoGameTitle) error {
	ids := t.VideoGameIDs
	if t.VideoGameID != nil {
		ids = append(ids, *t.VideoGameID)
	}

	_, err := e.pool.Exec(ctx,
		fmt.Sprintf(`
			UPDATE %s SET
				%s = $2,
				%s = $3,
				%s = COALESCE($4, %s),
				%s = COALESCE($5, %s),
				%s = COALESCE($6, %s),
				%s = COALESCE($7, %s),
				%s = COALESCE($8, %s),
				%s = (
					SELECT COALESCE(jsonb_agg(DISTINCT v), '[]'::jsonb)
					FROM jsonb_array_elements(COALESCE(%s, '[]'::jsonb) || to_jsonb(COALESCE($9::bigint[], '{}'))) AS v
				)
			WHERE %s = $1`,
			dbschema.VideoGameTitleTable.Table,
			dbschema.VideoGameTitleTable.RawTitle,
			dbschema.VideoGameTitleTable.NormalizedTitle,
			dbschema.VideoGameTitleTable.Locale, dbschema.VideoGameTitleTable.Locale,
			dbschema.VideoGameTitleTable.Metadata, dbschema.VideoGameTitleTable.Metadata,
			dbschema.VideoGameTitleTable.VersionHint, dbschema.VideoGameTitleTable.VersionHint,
			dbschema.VideoGameTitleTable.ProductID, dbschema.VideoGameTitleTable.ProductID,
			dbschema.VideoGameTitleTable.VideoGameID, dbschema.VideoGameTitleTable.VideoGameID,
			dbschema.VideoGameTitleTable.VideoGameIDs, dbschema.VideoGameTitleTable.VideoGameIDs,
			dbschema.VideoGameTitleTable.ID,
		),
		id, t.RawTitle, t.NormalizedTitle, t.Locale, jsonOrNil(t.Metadata), t.VersionHint, t.ProductID, t.VideoGameID, ids,
	)
	return err
}

func (e *Engine) insertVideoGameTitle(ctx context.Context, t model.VideoGameTitle) (int64, error) {
	ids := t.VideoGameIDs
	if t.VideoGameID != nil {
		ids = append(ids, *t.VideoGameID)
	}

	return e.withPKRescue(ctx, dbschema.VideoGameTitleTable.Table, func(ctx context.Context) (int64, error) {
		var id int64
		err := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING %s`,
				dbschema.VideoGameTitleTable.Table,
				dbschema.VideoGameTitleTable.ProductID, dbschema.VideoGameTitleTable.VideoGameID,
				dbschema.VideoGameTitleTable.VideoGameSourceID, dbschema.VideoGameTitleTable.VgSourceItemID,
				dbschema.VideoGameTitleTable.RawTitle, dbschema.VideoGameTitleTable.NormalizedTitle,
				dbschema.VideoGameTitleTable.Locale, dbschema.VideoGameTitleTable.Metadata, dbschema.VideoGameTitleTable.VideoGameIDs,
				dbschema.VideoGameTitleTable.ID,
			),
			t.ProductID, t.VideoGameID, t.VideoGameSourceID, t.VgSourceItemID,
			t.RawTitle, t.NormalizedTitle, t.Locale, jsonOrNil(t.Metadata), ids,
		).Scan(&id)
		return id, err
	})
}

func jsonOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return json.RawMessage(raw)
}
