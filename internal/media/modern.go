// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"fmt"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// writeModern upserts rows in chunks of batchSize, one multi-row statement
// per chunk, per spec.md §4.7 step 4.
func (ig *Ingestor) writeModern(ctx context.Context, rows []normalizedRow) error {
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := ig.upsertChunk(ctx, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ig *Ingestor) upsertChunk(ctx context.Context, chunk []normalizedRow) error {
	t := dbschema.GameMediaTable
	const cols = 10

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		 VALUES %s
		 ON CONFLICT (%s, %s, %s) DO UPDATE SET
		   %s = EXCLUDED.%s,
		   %s = EXCLUDED.%s,
		   %s = COALESCE(EXCLUDED.%s, %s.%s),
		   %s = COALESCE(EXCLUDED.%s, %s.%s),
		   %s = COALESCE(EXCLUDED.%s, %s.%s),
		   %s = COALESCE(EXCLUDED.%s, %s.%s),
		   %s = EXCLUDED.%s`,
		t.Table,
		t.VideoGameID, t.Source, t.ExternalID, t.URL, t.SortOrder,
		t.OriginalURL, t.ThumbnailURL, t.StreamURL, t.PosterURL, t.ProviderData,
		valuesPlaceholders(len(chunk), cols),
		t.VideoGameID, t.Source, t.ExternalID,
		t.URL, t.URL,
		t.SortOrder, t.SortOrder,
		t.OriginalURL, t.OriginalURL, t.Table, t.OriginalURL,
		t.ThumbnailURL, t.ThumbnailURL, t.Table, t.ThumbnailURL,
		t.StreamURL, t.StreamURL, t.Table, t.StreamURL,
		t.PosterURL, t.PosterURL, t.Table, t.PosterURL,
		t.ProviderData, t.ProviderData,
	)

	args := make([]any, 0, len(chunk)*cols)
	for _, row := range chunk {
		args = append(args,
			row.videoGameID, row.source, row.externalID, row.url, row.sortOrder,
			row.originalURL, row.thumbnailURL, row.streamURL, row.posterURL, row.providerData,
		)
	}

	_, err := ig.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("media: upsert chunk: %w", err)
	}
	return nil
}

// valuesPlaceholders builds "($1, $2, ...), ($N+1, ...), ..." for rows rows
// of cols columns each.
func valuesPlaceholders(rows, cols int) string {
	out := make([]byte, 0, rows*(cols*4+4))
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, '(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				out = append(out, ',')
			}
			out = append(out, '$')
			out = appendInt(out, n)
			n++
		}
		out = append(out, ')')
	}
	return string(out)
}

func appendInt(b []byte, v int) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, digits[i:]...)
}
