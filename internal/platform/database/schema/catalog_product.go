// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProductTableT names the columns of the `products` table.
type ProductTableT struct {
	Table    string
	ID       string
	Slug     string
	Name     string
	Category string
}

var ProductTable = ProductTableT{
	Table:    "products",
	ID:       "id",
	Slug:     "slug",
	Name:     "name",
	Category: "category",
}

func (t ProductTableT) Columns() []string {
	return []string{t.ID, t.Slug, t.Name, t.Category}
}

// VideoGameTitleTableT names the columns of the `video_game_titles` table.
// On legacy schemas this table does not exist and titles live directly on
// the single `video_games` row instead — see VideoGameTableT.LegacyRawTitle.
type VideoGameTitleTableT struct {
	Table             string
	ID                string
	ProductID         string
	VideoGameID       string
	VideoGameSourceID string
	VgSourceItemID    string
	RawTitle          string
	NormalizedTitle   string
	Locale            string
	VersionHint       string
	Metadata          string
	VideoGameIDs      string
}

var VideoGameTitleTable = VideoGameTitleTableT{
	Table:             "video_game_titles",
	ID:                "id",
	ProductID:         "product_id",
	VideoGameID:       "video_game_id",
	VideoGameSourceID: "video_game_source_id",
	VgSourceItemID:    "vg_source_item_id",
	RawTitle:          "raw_title",
	NormalizedTitle:   "normalized_title",
	Locale:            "locale",
	VersionHint:       "version_hint",
	Metadata:          "metadata",
	VideoGameIDs:      "video_game_ids",
}

func (t VideoGameTitleTableT) Columns() []string {
	return []string{
		t.ID, t.ProductID, t.VideoGameID, t.VideoGameSourceID, t.VgSourceItemID,
		t.RawTitle, t.NormalizedTitle, t.Locale, t.VersionHint, t.Metadata, t.VideoGameIDs,
	}
}

// VideoGameTableT names the columns of the `video_games` table, including
// the Laravel-style legacy columns that fold title/enrichment fields
// directly onto this row instead of a separate titles table.
type VideoGameTableT struct {
	Table           string
	ID              string
	TitleID         string
	PlatformID      string
	Edition         string
	ProductID       string
	SellableID      string
	DisplayTitle    string
	Synopsis        string
	RegionCodes     string
	Genres          string
	ReleaseDate     string
	Developer       string
	AverageRating   string
	RatingCount     string
	RatingUpdatedAt string
	Metadata        string

	// Legacy (Laravel) column names, present only in LegacyPHP/Hybrid shapes.
	LegacyRawTitle string
	LegacySlug     string
	LegacyCoverURL string
}

var VideoGameTable = VideoGameTableT{
	Table:           "video_games",
	ID:              "id",
	TitleID:         "title_id",
	PlatformID:      "platform_id",
	Edition:         "edition",
	ProductID:       "product_id",
	SellableID:      "sellable_id",
	DisplayTitle:    "display_title",
	Synopsis:        "synopsis",
	RegionCodes:     "region_codes",
	Genres:          "genres",
	ReleaseDate:     "release_date",
	Developer:       "developer",
	AverageRating:   "average_rating",
	RatingCount:     "rating_count",
	RatingUpdatedAt: "rating_updated_at",
	Metadata:        "metadata",
	LegacyRawTitle:  "title",
	LegacySlug:      "slug",
	LegacyCoverURL:  "cover_url",
}

func (t VideoGameTableT) Columns() []string {
	return []string{
		t.ID, t.TitleID, t.PlatformID, t.Edition, t.ProductID, t.SellableID,
		t.DisplayTitle, t.Synopsis, t.RegionCodes, t.Genres, t.ReleaseDate,
		t.Developer, t.AverageRating, t.RatingCount, t.RatingUpdatedAt, t.Metadata,
	}
}

// SellableTableT names the columns of the `sellables` table.
type SellableTableT struct {
	Table           string
	ID              string
	Kind            string
	ProductID       string
	SoftwareTitleID string
	ConsoleID       string
}

var SellableTable = SellableTableT{
	Table:           "sellables",
	ID:              "id",
	Kind:            "kind",
	ProductID:       "product_id",
	SoftwareTitleID: "software_title_id",
	ConsoleID:       "console_id",
}

func (t SellableTableT) Columns() []string {
	return []string{t.ID, t.Kind, t.ProductID, t.SoftwareTitleID, t.ConsoleID}
}
