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

// EnsureVideoGame resolves or creates a VideoGame. On the modern schema
// (title_id, platform_id) it upserts keyed by that pair with an optional
// edition. On the legacy Laravel schema, product_id is derived from title_id
// and (title_id, platform_id, edition) is embedded in metadata before
// upserting by product_id; the title written is g.DisplayTitle, and
// title/normalized_title are not fetched from video_game_titles.
func (e *Engine) EnsureVideoGame(ctx context.Context, g model.VideoGame) (int64, error) {
	if e.shape.IsModern() {
		return e.ensureVideoGameModern(ctx, g)
	}
	return e.ensureVideoGameLegacy(ctx, g)
}

func (e *Engine) ensureVideoGameModern(ctx context.Context, g model.VideoGame) (int64, error) {
	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NOT DISTINCT FROM $3`,
			dbschema.VideoGameTable.ID, dbschema.VideoGameTable.Table,
			dbschema.VideoGameTable.TitleID, dbschema.VideoGameTable.PlatformID, dbschema.VideoGameTable.Edition),
		g.TitleID, g.PlatformID, g.Edition,
	).Scan(&id)

	if lookupErr == nil {
		if err := e.refreshVideoGame(ctx, id, g); err != nil {
			return 0, err
		}
		return id, nil
	}
	if lookupErr != pgx.ErrNoRows {
		return 0, lookupErr
	}

	return e.withPKRescue(ctx, dbschema.VideoGameTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		err := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING %s`,
				dbschema.VideoGameTable.Table,
				dbschema.VideoGameTable.TitleID, dbschema.VideoGameTable.PlatformID, dbschema.VideoGameTable.Edition,
				dbschema.VideoGameTable.DisplayTitle, dbschema.VideoGameTable.Synopsis, dbschema.VideoGameTable.RegionCodes,
				dbschema.VideoGameTable.Genres, dbschema.VideoGameTable.ReleaseDate, dbschema.VideoGameTable.Developer,
				dbschema.VideoGameTable.Metadata,
				dbschema.VideoGameTable.ID,
			),
			g.TitleID, g.PlatformID, g.Edition, g.DisplayTitle, g.Synopsis, g.RegionCodes,
			g.Genres, g.ReleaseDate, g.Developer, jsonOrNil(g.Metadata),
		).Scan(&insertedID)
		return insertedID, err
	})
}

func (e *Engine) refreshVideoGame(ctx context.Context, id int64, g model.VideoGame) error {
	_, err := e.pool.Exec(ctx,
		fmt.Sprintf(`
			UPDATE %s SET
				%s = COALESCE($2, %s), %s = COALESCE($3, %s),
				%s = COALESCE($4, %s), %s = COALESCE($5, %s),
				%s = COALESCE($6, %s), %s = COALESCE($7, %s)
			WHERE %s = $1`,
			dbschema.VideoGameTable.Table,
			dbschema.VideoGameTable.DisplayTitle, dbschema.VideoGameTable.DisplayTitle,
			dbschema.VideoGameTable.Synopsis, dbschema.VideoGameTable.Synopsis,
			dbschema.VideoGameTable.RegionCodes, dbschema.VideoGameTable.RegionCodes,
			dbschema.VideoGameTable.Genres, dbschema.VideoGameTable.Genres,
			dbschema.VideoGameTable.ReleaseDate, dbschema.VideoGameTable.ReleaseDate,
			dbschema.VideoGameTable.Developer, dbschema.VideoGameTable.Developer,
			dbschema.VideoGameTable.ID,
		),
		id, g.DisplayTitle, g.Synopsis, g.RegionCodes, g.Genres, g.ReleaseDate, g.Developer,
	)
	return err
}

// legacyMetadata is embedded into video_games.metadata on a Laravel-style
// schema, carrying the modern-schema linkage fields it has no columns for.
type legacyMetadata struct {
	TitleID    *int64  `json:"title_id,omitempty"`
	PlatformID *int64  `json:"platform_id,omitempty"`
	Edition    *string `json:"edition,omitempty"`
}

func (e *Engine) ensureVideoGameLegacy(ctx context.Context, g model.VideoGame) (int64, error) {
	productID := g.ProductID
	if productID == nil && g.TitleID != nil {
		var derived int64
		err := e.pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
				dbschema.VideoGameTitleTable.ProductID, dbschema.VideoGameTitleTable.Table, dbschema.VideoGameTitleTable.ID),
			*g.TitleID,
		).Scan(&derived)
		if err == nil {
			productID = &derived
		} else if err != pgx.ErrNoRows {
			return 0, err
		}
	}
	if productID == nil {
		return 0, fmt.Errorf("upsert: ensure_video_game (legacy): no product_id available")
	}

	rawTitle := ""
	if g.DisplayTitle != nil {
		rawTitle = *g.DisplayTitle
	}

	meta := legacyMetadata{TitleID: g.TitleID, PlatformID: g.PlatformID, Edition: g.Edition}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, err
	}

	return e.withPKRescue(ctx, dbschema.VideoGameTable.Table, func(ctx context.Context) (int64, error) {
		var id int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.VideoGameTable.Table, dbschema.VideoGameTable.ProductID, dbschema.VideoGameTable.LegacyRawTitle, dbschema.VideoGameTable.Metadata,
				dbschema.VideoGameTable.ProductID,
				dbschema.VideoGameTable.LegacyRawTitle, dbschema.VideoGameTable.LegacyRawTitle,
				dbschema.VideoGameTable.Metadata, dbschema.VideoGameTable.Metadata,
				dbschema.VideoGameTable.ID,
			),
			*productID, rawTitle, json.RawMessage(metaJSON),
		).Scan(&id)
		return id, insertErr
	})
}
