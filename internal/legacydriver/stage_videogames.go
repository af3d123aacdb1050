// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	"github.com/taibuivan/gamecatalog/internal/catalog/rating"
)

// unknownPlatformName is the catch-all platform assigned when a legacy
// video_games row names no resolvable platform, per spec.md §4.8 step 5.
const unknownPlatformName = "Unknown"

// vgUpd is one buffered enrichment update, flushed in chunks via a single
// UPDATE ... FROM (VALUES ...) statement — see flushVideoGameUpdates.
type vgUpd struct {
	videoGameID     int64
	averageRating   *float64
	ratingCount     *int
	ratingUpdatedAt *time.Time
}

// runVideoGamesStage streams the snapshot's video_games table, resumable by
// the "video_games" cursor checkpoint, and derives each row's platform set
// from product_platform_links and a parsed platform_codes column — stage 5
// of spec.md §4.8. EnsureVideoGame creates or refreshes each (product,
// platform) row's identity and core fields; this stage additionally
// accumulates a ratings-enrichment buffer (vgUpd) flushed in chunks.
func (c *Context) runVideoGamesStage(ctx context.Context) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "video_games")
	if err != nil {
		return err
	}
	if !hasTable {
		c.Log.Info("video_games_stage_skipped_no_source_table")
		return nil
	}

	unknownPlatformID, err := c.Engine.EnsurePlatform(ctx, unknownPlatformName, nil, nil)
	if err != nil {
		return fmt.Errorf("legacydriver: ensure unknown platform: %w", err)
	}

	minID, err := c.Checkpoints.Cursor(ctx, "video_games", c.Import.Resume)
	if err != nil {
		return err
	}
	if c.Import.VideoGameIDMin > minID {
		minID = c.Import.VideoGameIDMin
	}

	checkpointEvery := c.Import.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 1000
	}
	updateChunk := c.Import.VideoGameUpdateChunk
	if updateChunk <= 0 {
		updateChunk = 500
	}

	rows, err := c.Snapshot.QueryContext(ctx, `
		SELECT id, product_id, title, synopsis, platform_codes, genres, release_date,
		       developer, rating, rating_count
		FROM video_games
		WHERE id > ?
		ORDER BY id`, minID)
	if err != nil {
		return fmt.Errorf("legacydriver: query video_games: %w", err)
	}
	defer rows.Close()

	var buf []vgUpd
	var lastID int64
	processed, newCount := 0, 0

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := c.flushVideoGameUpdates(ctx, buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	for rows.Next() {
		if c.Import.VideoGameLimitNew > 0 && newCount >= c.Import.VideoGameLimitNew {
			break
		}

		var legacyID, productID int64
		var title, synopsis, platformCodes, genresRaw, releaseDateRaw, developer sql.NullString
		var ratingRaw sql.NullFloat64
		var ratingCount sql.NullInt64
		if err := rows.Scan(&legacyID, &productID, &title, &synopsis, &platformCodes, &genresRaw,
			&releaseDateRaw, &developer, &ratingRaw, &ratingCount); err != nil {
			return fmt.Errorf("legacydriver: scan video_games row: %w", err)
		}

		resolvedProductID, ok := c.resolvedProductID(productID)
		if !ok {
			// products stage never saw this legacy product — skip rather
			// than fail the whole run; logged for follow-up.
			c.Log.Warn("video_game_skipped_unresolved_product", "legacy_video_game_id", legacyID, "legacy_product_id", productID)
			lastID = legacyID
			continue
		}

		platformIDs := c.derivePlatformIDs(productID, platformCodes.String, unknownPlatformID)

		var displayTitle, synopsisPtr, developerPtr *string
		if title.Valid && title.String != "" {
			displayTitle = &title.String
		}
		if synopsis.Valid && synopsis.String != "" {
			synopsisPtr = &synopsis.String
		}
		if developer.Valid && developer.String != "" {
			developerPtr = &developer.String
		}
		var releaseDate *time.Time
		if releaseDateRaw.Valid {
			if parsed, err := time.Parse("2006-01-02", releaseDateRaw.String); err == nil {
				releaseDate = &parsed
			}
		}
		genres := parseCSVList(genresRaw.String)

		for _, platformID := range platformIDs {
			pid := platformID
			vgID, err := c.Engine.EnsureVideoGame(ctx, model.VideoGame{
				ProductID:    &resolvedProductID,
				PlatformID:   &pid,
				DisplayTitle: displayTitle,
				Synopsis:     synopsisPtr,
				Genres:       genres,
				ReleaseDate:  releaseDate,
				Developer:    developerPtr,
			})
			if err != nil {
				return fmt.Errorf("legacydriver: ensure video game legacy_id=%d: %w", legacyID, err)
			}
			c.addVideoGameMapping(legacyID, vgID)
			newCount++

			upd := vgUpd{videoGameID: vgID}
			payload := map[string]any{}
			if ratingRaw.Valid {
				payload["rating"] = ratingRaw.Float64
			}
			if normalized, ok := rating.ExtractNormalizedRating("legacy", payload); ok {
				upd.averageRating = &normalized
			}
			if ratingCount.Valid {
				rc := int(ratingCount.Int64)
				upd.ratingCount = &rc
			}
			if upd.averageRating != nil || upd.ratingCount != nil {
				now := time.Now().UTC()
				upd.ratingUpdatedAt = &now
				buf = append(buf, upd)
			}
		}

		lastID = legacyID
		processed++

		if len(buf) >= updateChunk {
			if err := flush(); err != nil {
				return err
			}
		}
		if processed%checkpointEvery == 0 {
			if err := flush(); err != nil {
				return err
			}
			if err := c.Checkpoints.SaveCursor(ctx, "video_games", lastID); err != nil {
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
		if err := c.Checkpoints.SaveCursor(ctx, "video_games", lastID); err != nil {
			return err
		}
	}

	c.Log.Info("video_games_stage_complete", "rows", processed)
	return nil
}

// derivePlatformIDs resolves legacyProductID's linked platforms (from
// product_platform_links) plus any additionally named in a CSV
// platform_codes column, falling back to unknownPlatformID when neither
// source names a resolvable platform.
func (c *Context) derivePlatformIDs(legacyProductID int64, platformCodes string, unknownPlatformID int64) []int64 {
	seen := make(map[int64]struct{})
	var out []int64

	for _, legacyPlatformID := range c.platformsForProduct(legacyProductID) {
		if resolved, ok := c.resolvedPlatformID(legacyPlatformID); ok {
			if _, dup := seen[resolved]; !dup {
				seen[resolved] = struct{}{}
				out = append(out, resolved)
			}
		}
	}

	for _, code := range parseCSVList(platformCodes) {
		if resolved, ok := c.resolvedPlatformIDByCode(code); ok {
			if _, dup := seen[resolved]; !dup {
				seen[resolved] = struct{}{}
				out = append(out, resolved)
			}
		}
	}

	if len(out) == 0 {
		out = append(out, unknownPlatformID)
	}
	return out
}

// resolvedPlatformIDByCode looks code up in the Provider Entity Cache's
// platform entries and returns the cached platform id, if any.
func (c *Context) resolvedPlatformIDByCode(code string) (int64, bool) {
	if id, ok := c.Entities.PlatformID(code); ok {
		return id, true
	}
	return 0, false
}

func parseCSVList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
