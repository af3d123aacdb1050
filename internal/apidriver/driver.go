// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	"github.com/taibuivan/gamecatalog/internal/catalog/rating"
	"github.com/taibuivan/gamecatalog/internal/catalog/upsert"
	"github.com/taibuivan/gamecatalog/internal/media"
	"github.com/taibuivan/gamecatalog/internal/platform/config"
)

// EnrichedProduct pairs one category-grid summary with whatever the
// per-product detail and rating lookups added.
type EnrichedProduct struct {
	Summary ProductSummary
	Detail  ProductDetail
}

// Driver wires Client to the Upsert Engine and Media Ingestor: it registers
// every PlayStation Store product it observes as a provider_items row and
// carries its media/rating data into the catalog schema. This is the
// consumer spec.md §4.8's Concurrency paragraph calls "enrichment fan-out",
// bounded by PS_ENRICH_CONCURRENCY.
type Driver struct {
	client *Client
	engine *upsert.Engine
	media  *media.Ingestor
	cfg    config.APIDriverConfig
	log    *slog.Logger
}

// NewDriver constructs a Driver.
func NewDriver(client *Client, engine *upsert.Engine, mediaIngestor *media.Ingestor, cfg config.APIDriverConfig, log *slog.Logger) *Driver {
	return &Driver{client: client, engine: engine, media: mediaIngestor, cfg: cfg, log: log}
}

// FetchCategoryGrid runs one categoryGridRetrieve call and returns its
// parsed product summaries.
func (d *Driver) FetchCategoryGrid(ctx context.Context, locale, categoryID string) ([]ProductSummary, error) {
	raw, err := d.client.Do(ctx, "categoryGridRetrieve", locale, map[string]any{
		"categoryId": categoryID,
		"pageArgs":   map[string]any{"size": 100},
	})
	if err != nil {
		return nil, fmt.Errorf("apidriver: fetch category grid: %w", err)
	}
	return extractProductSummaries(raw)
}

// EnrichProducts fetches star rating and full detail for every summary
// carrying a product id, bounded by cfg.EnrichConcurrency (default 6) —
// the Go mapping of the original semaphore-bounded FuturesUnordered pool,
// using errgroup.Group.SetLimit for the same effect.
func (d *Driver) EnrichProducts(ctx context.Context, locale string, items []ProductSummary) ([]EnrichedProduct, error) {
	out := make([]EnrichedProduct, len(items))
	limit := d.cfg.EnrichConcurrency
	if limit <= 0 {
		limit = 6
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		i, item := i, item
		out[i] = EnrichedProduct{Summary: item}
		if item.ProductID == "" {
			continue
		}
		g.Go(func() error {
			enriched := out[i]

			if raw, err := d.client.Do(gctx, "wcaProductStarRatingRetrieve", locale, map[string]any{"productId": item.ProductID}); err == nil {
				if avg, count, ok := extractStarRating(raw); ok {
					enriched.Summary.AverageRating = &avg
					enriched.Summary.RatingCount = &count
				}
			} else {
				d.log.Warn("apidriver_rating_fetch_failed", slog.String("product_id", item.ProductID), slog.Any("error", err))
			}

			if raw, err := d.client.Do(gctx, "metGetProductById", locale, map[string]any{"productId": item.ProductID}); err == nil {
				if detail, derr := extractProductDetail(raw); derr == nil {
					enriched.Detail = detail
				}
			} else {
				d.log.Warn("apidriver_detail_fetch_failed", slog.String("product_id", item.ProductID), slog.Any("error", err))
			}

			out[i] = enriched
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterProviderItems ensures a provider_items row for every summary
// carrying a product id, so the Verifier's title-linkage check (I2) has a
// row to resolve against once a caller links it to a video_game.
func (d *Driver) RegisterProviderItems(ctx context.Context, providerID int64, items []ProductSummary) (int, error) {
	count := 0
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		meta, err := json.Marshal(item)
		if err != nil {
			return count, fmt.Errorf("apidriver: marshal provider item metadata: %w", err)
		}
		if _, err := d.engine.EnsureProviderItem(ctx, providerID, item.ProductID, meta); err != nil {
			return count, fmt.Errorf("apidriver: ensure provider item %s: %w", item.ProductID, err)
		}
		count++
	}
	return count, nil
}

// WriteMedia ingests a product's cover/screenshot/trailer URLs into
// game_media for an already-resolved videoGameID.
func (d *Driver) WriteMedia(ctx context.Context, videoGameSourceID, videoGameID int64, item EnrichedProduct) (int, error) {
	images := item.Summary.MediaImageURLs
	if len(images) == 0 {
		images = item.Detail.Images
	}
	videos := item.Summary.MediaVideoURLs
	if len(videos) == 0 {
		videos = item.Detail.Videos
	}

	var rows []model.MediaRow
	for i, url := range images {
		rows = append(rows, model.MediaRow{
			VideoGameSourceID: videoGameSourceID,
			VideoGameID:       videoGameID,
			Source:            "playstation",
			MediaType:         "screenshot",
			ExternalID:        fmt.Sprintf("%s-image-%d", item.Summary.ProductID, i),
			URL:               url,
			InputIndex:        i,
		})
	}
	for i, url := range videos {
		rows = append(rows, model.MediaRow{
			VideoGameSourceID: videoGameSourceID,
			VideoGameID:       videoGameID,
			Source:            "playstation",
			MediaType:         "trailer",
			ExternalID:        fmt.Sprintf("%s-video-%d", item.Summary.ProductID, i),
			URL:               url,
			InputIndex:        i,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return d.media.Ingest(ctx, rows)
}

// RatingUpdate derives a normalized (average, count) pair from an enriched
// product's rating data, for the caller to fold into a video_games row
// alongside whatever other enrichment it is writing.
func RatingUpdate(item EnrichedProduct) (average float64, count int64, ok bool) {
	if item.Summary.AverageRating == nil {
		return 0, 0, false
	}
	// The store's aggregatedRating.average is already 0..5, not the
	// "X out of 5 stars" string the psstore override expects, so this
	// intentionally falls through to the generic "rating" alias instead of
	// registering a provider override.
	normalized, ok := rating.ExtractNormalizedRating("", map[string]any{"rating": *item.Summary.AverageRating})
	if !ok {
		return 0, 0, false
	}
	ratingCount := int64(0)
	if item.Summary.RatingCount != nil {
		ratingCount = *item.Summary.RatingCount
	}
	return normalized, ratingCount, true
}
