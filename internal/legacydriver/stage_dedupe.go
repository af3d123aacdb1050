// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"fmt"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// runDedupeStage consolidates duplicate video_games and game_media rows
// produced by re-running earlier stages against an updated snapshot —
// stage 7 of spec.md §4.8. Within each equivalence group the lowest id is
// kept; game_media rows pointing at a deleted video_game are repointed to
// the keeper before the duplicate is removed.
func (c *Context) runDedupeStage(ctx context.Context) error {
	deletedVG, err := c.dedupeVideoGames(ctx)
	if err != nil {
		return fmt.Errorf("legacydriver: dedupe video_games: %w", err)
	}
	deletedMedia, err := c.dedupeGameMedia(ctx)
	if err != nil {
		return fmt.Errorf("legacydriver: dedupe game_media: %w", err)
	}

	c.Log.Info("dedupe_all_complete", "deleted_video_games", deletedVG, "deleted_game_media", deletedMedia)
	return nil
}

// dedupeVideoGames groups by (title_id, platform_id, edition) on the modern
// schema or (product_id, platform_id) on a legacy one, re-points game_media
// rows from every duplicate onto the group's minimum id, then deletes the
// duplicates.
func (c *Context) dedupeVideoGames(ctx context.Context) (int64, error) {
	vg := dbschema.VideoGameTable
	gm := dbschema.GameMediaTable

	var identityCols string
	if c.Shape.IsModern() {
		identityCols = fmt.Sprintf("%s, %s, COALESCE(%s, '')", vg.TitleID, vg.PlatformID, vg.Edition)
	} else {
		identityCols = fmt.Sprintf("%s, %s", vg.ProductID, vg.PlatformID)
	}

	query := fmt.Sprintf(`
		WITH groups AS (
			SELECT %s AS identity, MIN(%s) AS keep_id, ARRAY_AGG(%s ORDER BY %s) AS all_ids
			FROM %s
			GROUP BY %s
			HAVING COUNT(*) > 1
		), moved_media AS (
			UPDATE %s gm SET %s = g.keep_id
			FROM groups g
			WHERE gm.%s = ANY(g.all_ids) AND gm.%s <> g.keep_id
			RETURNING 1
		)
		DELETE FROM %s vg
		USING groups g
		WHERE vg.%s = ANY(g.all_ids) AND vg.%s <> g.keep_id`,
		identityCols, vg.ID, vg.ID, vg.ID,
		vg.Table,
		identityCols,
		gm.Table, gm.VideoGameID,
		gm.VideoGameID, gm.VideoGameID,
		vg.Table,
		vg.ID, vg.ID,
	)

	tag, err := c.Pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// dedupeGameMedia collapses rows sharing (video_game_id, source, url) but
// differing only in external_id, keeping the lexicographically smallest
// external_id.
func (c *Context) dedupeGameMedia(ctx context.Context) (int64, error) {
	gm := dbschema.GameMediaTable

	query := fmt.Sprintf(`
		WITH groups AS (
			SELECT %s AS vgid, %s AS src, %s AS url,
			       MIN(%s) AS keep_external_id
			FROM %s
			WHERE %s <> ''
			GROUP BY %s, %s, %s
			HAVING COUNT(*) > 1
		)
		DELETE FROM %s gm
		USING groups g
		WHERE gm.%s = g.vgid AND gm.%s = g.src AND gm.%s = g.url AND gm.%s <> g.keep_external_id`,
		gm.VideoGameID, gm.Source, gm.URL,
		gm.ExternalID,
		gm.Table,
		gm.URL,
		gm.VideoGameID, gm.Source, gm.URL,
		gm.Table,
		gm.VideoGameID, gm.Source, gm.URL, gm.ExternalID,
	)

	tag, err := c.Pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
