// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"fmt"
	"strings"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// flushVideoGameUpdates writes buf's rating enrichment via a single
// UPDATE ... FROM (VALUES ...) statement, reducing round trips versus one
// UPDATE per row. When that statement fails it retries row-by-row, so a
// batch that fails as a whole still makes forward progress; the first row
// whose own UPDATE fails ends the flush with an error — adapted from
// flush_video_game_updates in the original importer.
func (c *Context) flushVideoGameUpdates(ctx context.Context, buf []vgUpd) error {
	if len(buf) == 0 {
		return nil
	}

	// Last entry wins when buf carries duplicate video_game ids (two legacy
	// rows collapsing to the same product/platform pair): a HashMap keyed by
	// id, built by iterating forward, before the VALUES list is emitted.
	// Without this, duplicate src.id rows in the CTE below match the same
	// target row in no defined order, so UPDATE ... FROM src would pick an
	// arbitrary row instead of the last one.
	byID := make(map[int64]vgUpd, len(buf))
	order := make([]int64, 0, len(buf))
	for _, u := range buf {
		if _, ok := byID[u.videoGameID]; !ok {
			order = append(order, u.videoGameID)
		}
		byID[u.videoGameID] = u
	}

	t := dbschema.VideoGameTable

	valuesClauses := make([]string, 0, len(order))
	args := make([]any, 0, len(order)*4)
	for i, id := range order {
		u := byID[id]
		base := i*4 + 1
		valuesClauses = append(valuesClauses, fmt.Sprintf("($%d::bigint, $%d::real, $%d::bigint, $%d::timestamptz)", base, base+1, base+2, base+3))
		args = append(args, u.videoGameID, u.averageRating, u.ratingCount, u.ratingUpdatedAt)
	}

	query := fmt.Sprintf(`
		WITH src(id, average_rating, rating_count, rating_updated_at) AS (
			VALUES %s
		)
		UPDATE %s vg SET
			%s = COALESCE(src.average_rating, vg.%s),
			%s = COALESCE(src.rating_count, vg.%s),
			%s = COALESCE(src.rating_updated_at, vg.%s)
		FROM src WHERE vg.%s = src.id`,
		strings.Join(valuesClauses, ", "),
		t.Table,
		t.AverageRating, t.AverageRating,
		t.RatingCount, t.RatingCount,
		t.RatingUpdatedAt, t.RatingUpdatedAt,
		t.ID,
	)

	if _, err := c.Pool.Exec(ctx, query, args...); err == nil {
		return nil
	}

	// Fall back to per-row updates so the stage still makes forward
	// progress when the batch statement fails (e.g. one oversized batch
	// exceeding a statement timeout).
	for _, u := range buf {
		_, err := c.Pool.Exec(ctx, fmt.Sprintf(`
			UPDATE %s SET
				%s = COALESCE($2, %s),
				%s = COALESCE($3, %s),
				%s = COALESCE($4, %s)
			WHERE %s = $1`,
			t.Table,
			t.AverageRating, t.AverageRating,
			t.RatingCount, t.RatingCount,
			t.RatingUpdatedAt, t.RatingUpdatedAt,
			t.ID,
		), u.videoGameID, u.averageRating, u.ratingCount, u.ratingUpdatedAt)
		if err != nil {
			return fmt.Errorf("legacydriver: per-row rating flush for video_game %d: %w", u.videoGameID, err)
		}
	}
	return nil
}
