// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package media implements the Media Ingestor: deduplicating a batch of
[model.MediaRow]s, normalizing their source/media_type labels to whatever
the connected database actually supports, and writing game_media rows via
either the modern batched-upsert path or the legacy per-row path.
*/
package media

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	"github.com/taibuivan/gamecatalog/internal/catalog/schema"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// batchSize bounds the number of rows in one ON CONFLICT upsert statement
// on the modern write path, per spec.md §4.7 step 4.
const batchSize = 64

// Ingestor implements the Media Ingestor over pool, branching between the
// modern batched-upsert path and the legacy per-row path depending on
// whether game_media carries a `source` column.
type Ingestor struct {
	pool  *pgxpool.Pool
	cache *schema.Cache
	shape *schema.Shape
}

// NewIngestor constructs an [Ingestor].
func NewIngestor(pool *pgxpool.Pool, cache *schema.Cache, shape *schema.Shape) *Ingestor {
	return &Ingestor{pool: pool, cache: cache, shape: shape}
}

// normalizedRow is a [model.MediaRow] after dedup, normalization, sort-order
// assignment, and URL derivation — ready to write.
type normalizedRow struct {
	videoGameID  int64
	source       string
	mediaType    string
	externalID   string
	url          string
	sortOrder    int
	originalURL  *string
	thumbnailURL *string
	streamURL    *string
	posterURL    *string
	providerData []byte
}

// Ingest deduplicates, normalizes, and writes rows. It returns the number of
// rows actually written (after in-batch dedup).
func (ig *Ingestor) Ingest(ctx context.Context, rows []model.MediaRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	deduped := dedupeByKey(rows)

	normalized := make([]normalizedRow, 0, len(deduped))
	for _, r := range deduped {
		canonicalSource := normalizeSource(r.Source)
		canonicalMediaType := normalizeMediaType(r.MediaType)

		source, err := ig.resolveSourceLabel(ctx, canonicalSource)
		if err != nil {
			return 0, err
		}
		mediaType, err := ig.resolveMediaTypeLabel(ctx, canonicalMediaType)
		if err != nil {
			return 0, err
		}

		nr := normalizedRow{
			videoGameID:  r.VideoGameID,
			source:       source,
			mediaType:    mediaType,
			externalID:   r.ExternalID,
			url:          r.URL,
			sortOrder:    sortPriority(canonicalMediaType),
			providerData: encodeProviderData(withTitle(r.ProviderData, r.Title)),
		}
		nr.originalURL, nr.thumbnailURL, nr.streamURL, nr.posterURL = deriveURLs(r.ProviderData)
		normalized = append(normalized, nr)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].sortOrder < normalized[j].sortOrder
	})

	hasSourceColumn, err := ig.cache.HasColumn(ctx, dbschema.GameMediaTable.Table, dbschema.GameMediaTable.Source)
	if err != nil {
		return 0, err
	}

	if hasSourceColumn {
		if err := ig.writeModern(ctx, normalized); err != nil {
			return 0, err
		}
		return len(normalized), nil
	}

	if err := ig.writeLegacy(ctx, normalized); err != nil {
		return 0, err
	}
	return len(normalized), nil
}

// resolveSourceLabel returns source unless the target column is a Postgres
// enum that lacks that label, in which case it falls back to "psn" — the
// one concrete fallback named in spec.md §4.7 step 2.
func (ig *Ingestor) resolveSourceLabel(ctx context.Context, source string) (string, error) {
	if source != "psstore" {
		return source, nil
	}
	ok, err := ig.enumHasLabel(ctx, dbschema.GameMediaTable.Table, dbschema.GameMediaTable.Source, source)
	if err != nil {
		return "", err
	}
	if ok {
		return source, nil
	}
	return "psn", nil
}

// resolveMediaTypeLabel mirrors resolveSourceLabel for "background" →
// "artwork".
func (ig *Ingestor) resolveMediaTypeLabel(ctx context.Context, mediaType string) (string, error) {
	if mediaType != "background" {
		return mediaType, nil
	}
	ok, err := ig.enumHasLabel(ctx, dbschema.GameMediaTable.Table, dbschema.GameMediaTable.Kind, mediaType)
	if err != nil {
		return "", err
	}
	if ok {
		return mediaType, nil
	}
	return "artwork", nil
}

// enumHasLabel reports whether table.column is backed by a Postgres enum
// type that carries label. A non-enum column (plain text/varchar) reports
// true unconditionally — there is no fixed vocabulary to fall back from.
func (ig *Ingestor) enumHasLabel(ctx context.Context, table, column, label string) (bool, error) {
	udt, exists, err := ig.cache.ColumnUDT(ctx, table, column)
	if err != nil {
		return false, err
	}
	if !exists || udt == "" {
		return true, nil
	}
	return ig.cache.EnumHasLabel(ctx, udt, label)
}

// dedupeByKey drops later rows sharing a (video_game_id, normalized_source,
// external_id) key with an earlier one, per spec.md §4.7 step 1. Source is
// normalized before deduping so that e.g. "psn" and "playstation-store"
// collapse to the same key.
func dedupeByKey(rows []model.MediaRow) []model.MediaRow {
	type key struct {
		videoGameID int64
		source      string
		externalID  string
	}
	seen := make(map[key]struct{}, len(rows))
	out := make([]model.MediaRow, 0, len(rows))
	for _, r := range rows {
		k := key{r.VideoGameID, normalizeSource(r.Source), r.ExternalID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
