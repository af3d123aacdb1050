// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import (
	"context"
	"fmt"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// Kind tags the overall column-naming shape of the connected database.
type Kind string

const (
	// Modern is the unified schema: video_game_titles/sellables/offers/
	// offer_jurisdictions/region_prices all exist as first-class tables.
	Modern Kind = "modern"

	// LegacyPHP is the Laravel-era schema: video_games carries title
	// columns directly, and pricing collapses into sku_regions.
	LegacyPHP Kind = "legacy_php"

	// Hybrid is a mid-migration database carrying both shapes at once; the
	// Upsert Engine prefers the modern path per table where both exist.
	Hybrid Kind = "hybrid"
)

// Shape is a precomputed, immutable snapshot of which write paths are
// available. It is computed once at boot from a [Cache] and threaded
// through every component's constructor — re-probing per call would be
// wasteful and, per the Design Note this pipeline follows, an explicitly
// passed value is preferable to a lazily-memoized global.
type Shape struct {
	Kind Kind

	HasVideoGameTitles    bool
	HasSellables          bool
	HasOfferJurisdictions bool
	HasRegionPrices       bool
	HasJurisdictions      bool
	HasSkuRegions         bool
	HasGameMediaKindEnum  bool
}

// DetectShape probes cache for the tables that distinguish the modern
// schema from the legacy one, and returns the resulting [Shape].
func DetectShape(ctx context.Context, cache *Cache) (*Shape, error) {
	hasTitles, err := cache.HasTable(ctx, dbschema.VideoGameTitleTable.Table)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}
	hasSellables, err := cache.HasTable(ctx, dbschema.SellableTable.Table)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}
	hasOfferJur, err := cache.HasTable(ctx, dbschema.OfferJurisdictionTable.Table)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}
	hasRegionPrices, err := cache.HasTable(ctx, dbschema.RegionPriceTable.Table)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}
	hasJurisdictions, err := cache.HasTable(ctx, dbschema.JurisdictionTable.Table)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}
	hasSkuRegions, err := cache.HasTable(ctx, dbschema.SkuRegionTable.Table)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}

	modernPresent := hasTitles && hasSellables && hasOfferJur && hasRegionPrices
	legacyPresent := hasSkuRegions

	kind := Modern
	switch {
	case modernPresent && legacyPresent:
		kind = Hybrid
	case !modernPresent && legacyPresent:
		kind = LegacyPHP
	case !modernPresent && !legacyPresent:
		// Neither shape fully present: treat as legacy since the pipeline
		// must degrade gracefully (sentinel id 0) rather than crash on
		// optional tables — see Cache.HasTable call sites in upsert.
		kind = LegacyPHP
	}

	udtName, _, err := cache.ColumnUDT(ctx, dbschema.GameMediaTable.Table, dbschema.GameMediaTable.Kind)
	if err != nil {
		return nil, fmt.Errorf("schema: detect shape: %w", err)
	}
	hasKindEnum := udtName != "" && udtName != "text" && udtName != "character varying" && udtName != "varchar"

	return &Shape{
		Kind:                  kind,
		HasVideoGameTitles:    hasTitles,
		HasSellables:          hasSellables,
		HasOfferJurisdictions: hasOfferJur,
		HasRegionPrices:       hasRegionPrices,
		HasJurisdictions:      hasJurisdictions,
		HasSkuRegions:         hasSkuRegions,
		HasGameMediaKindEnum:  hasKindEnum,
	}, nil
}

// IsModern reports whether the modern write path should be preferred.
func (s *Shape) IsModern() bool { return s.Kind == Modern || s.Kind == Hybrid }

// IsLegacy reports whether the legacy sku_regions write path must be used
// for pricing (true whenever the modern pricing tables are absent).
func (s *Shape) IsLegacy() bool { return !s.HasOfferJurisdictions || !s.HasRegionPrices }
