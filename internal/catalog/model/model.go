// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package model defines the catalog entity types shared by every component of
the ingestion pipeline: the Upsert Engine writes them, the Pricing and Media
Ingestors derive from them, and the Legacy Snapshot Driver/API Driver
populate them from their respective sources.

These are deliberately plain structs — the same "one struct per table, field
names mirroring columns" shape the teacher uses for its own domain entities
(see internal/core/comic/comic.go) — generalized from a comic catalog to a
video-game catalog.
*/
package model

import "time"

// Provider is an upstream data source (e.g. a storefront API, a media
// provider). Created lazily on first reference; never deleted by the
// pipeline.
type Provider struct {
	ID   int64
	Slug string
	Name string
	Kind string // "retailer_api" | "media" | "storefront" | ...
}

// Platform is a canonical hardware/software platform (e.g. "PS5").
// Invariant: at most one row per canonical platform after normalization.
type Platform struct {
	ID     int64
	Name   string
	Code   *string
	Family *string
}

// Currency is an ISO-4217 currency. Unique by Code.
type Currency struct {
	ID        int64
	Code      string // uppercase ISO-4217
	Name      string
	MinorUnit int // 0..4, default 2
}

// Country is an ISO-3166 alpha-2 country, optionally carrying its alpha-3
// form. Unique by ISO2.
type Country struct {
	ID         int64
	ISO2       string
	ISO3       *string
	Name       string
	CurrencyID *int64
}

// Jurisdiction scopes a country to an optional subdivision (region code).
// Absent entirely in some legacy deployments, where CountryID doubles as
// the jurisdiction identifier.
type Jurisdiction struct {
	ID         int64
	CountryID  int64
	RegionCode *string
}

// Product is the conceptual title-across-platforms aggregate. Unique by Slug.
type Product struct {
	ID       int64
	Slug     string
	Name     string
	Category string // "software" | "hardware"
}

// VideoGameTitle links a product and/or a source item to a raw/normalized
// title string. Uniqueness varies by schema shape — see upsert.EnsureVideoGameTitle.
type VideoGameTitle struct {
	ID                int64
	ProductID         *int64
	VideoGameID       *int64
	VideoGameSourceID *int64
	VgSourceItemID    *string
	RawTitle          string
	NormalizedTitle   string
	Locale            *string
	VersionHint       *string
	Metadata          []byte // raw JSON, schema-dependent
	VideoGameIDs      []int64
}

// VideoGame identifies a concrete (title, platform[, edition]) instance, or
// (in Laravel-style schemas) a per-product row carrying the same enrichment
// fields embedded in Metadata.
type VideoGame struct {
	ID              int64
	TitleID         *int64
	PlatformID      *int64
	Edition         *string
	ProductID       *int64
	SellableID      *int64
	DisplayTitle    *string
	Synopsis        *string
	RegionCodes     []string
	Genres          []string
	ReleaseDate     *time.Time
	Developer       *string
	AverageRating   *float64
	RatingCount     *int
	RatingUpdatedAt *time.Time
	Metadata        []byte
}

// Sellable links a product/software-title/console to something retailers
// can attach offers to. Exactly one of ProductID/SoftwareTitleID/ConsoleID
// is populated, depending on schema shape.
type Sellable struct {
	ID              int64
	Kind            string
	ProductID       *int64
	SoftwareTitleID *int64
	ConsoleID       *int64
}

// Retailer is a canonical storefront identity (name + slug), with alias
// collapsing applied before lookup — see slugkit.CanonicalizeRetailer.
type Retailer struct {
	ID   int64
	Name string
	Slug string
}

// Offer is a (sellable, retailer, sku) tuple. Unique by that triple.
type Offer struct {
	ID         int64
	SellableID int64
	RetailerID int64
	SKU        string
}

// OfferJurisdiction scopes an Offer to a Jurisdiction and Currency. Unique
// by (OfferID, JurisdictionID). In legacy mode this collapses into a
// sku_regions(product_id, region_code, retailer, currency) row instead.
type OfferJurisdiction struct {
	ID             int64
	OfferID        int64
	JurisdictionID int64
	CurrencyID     int64
}

// RegionPrice is a single priced snapshot of an OfferJurisdiction (or legacy
// sku_region) at a point in time.
type RegionPrice struct {
	ID                  int64
	OfferJurisdictionID int64
	RecordedAt          time.Time
	AmountMinor         int64
	FiatAmount          float64
	LocalAmount         *float64
	BTCValue            *float64
	FXRateSnapshot      float64
	BTCRateSnapshot     *float64
	TaxInclusive        bool
	RawPayload          []byte
}

// ProviderItem is a (provider, external_id) identity carrying an arbitrary
// metadata payload from the upstream source.
type ProviderItem struct {
	ID         int64
	ProviderID int64
	ExternalID string
	Metadata   []byte
}

// GameMedia is a single media asset attached to a VideoGame. Unique by
// (VideoGameID, Source, ExternalID) in the modern schema, or by
// (VideoGameID, Kind, Slug) in the legacy one.
type GameMedia struct {
	ID           int64
	VideoGameID  int64
	Source       string
	ExternalID   string
	Kind         *string
	Slug         *string
	URL          string
	OriginalURL  *string
	ThumbnailURL *string
	StreamURL    *string
	PosterURL    *string
	ProviderData []byte
	SortOrder    int
}

// ImportCheckpoint records the resume position of a single Legacy Snapshot
// Driver stage. Unique by Source.
type ImportCheckpoint struct {
	Source       string
	LastLegacyID int64
	UpdatedAt    time.Time
}

// PriceRow is the Pricing Ingestor's input shape — one row per observed
// provider price, prior to currency/FX resolution.
type PriceRow struct {
	OfferJurisdictionID int64
	RecordedAt          time.Time
	AmountMinor         int64
	TaxInclusive        bool
	Meta                map[string]any
}

// MediaRow is the Media Ingestor's input shape — one row per observed
// provider media asset, prior to normalization and dedup.
type MediaRow struct {
	VideoGameSourceID int64
	VideoGameID       int64
	Source            string
	MediaType         string
	ExternalID        string
	URL               string
	Title             *string
	ProviderData      map[string]any
	InputIndex        int
}
