// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProviderItemTableT names the columns of the `provider_items` table.
type ProviderItemTableT struct {
	Table      string
	ID         string
	ProviderID string
	ExternalID string
	Metadata   string
}

var ProviderItemTable = ProviderItemTableT{
	Table:      "provider_items",
	ID:         "id",
	ProviderID: "provider_id",
	ExternalID: "external_id",
	Metadata:   "metadata",
}

func (t ProviderItemTableT) Columns() []string {
	return []string{t.ID, t.ProviderID, t.ExternalID, t.Metadata}
}

// GameMediaTableT names the columns of the `game_media` table, including the
// legacy Laravel-style column names used when the enum source/type pair is
// not yet available as a Postgres enum (see schema.Shape).
type GameMediaTableT struct {
	Table        string
	ID           string
	VideoGameID  string
	Source       string
	ExternalID   string
	Kind         string
	Slug         string
	URL          string
	OriginalURL  string
	ThumbnailURL string
	StreamURL    string
	PosterURL    string
	ProviderData string
	SortOrder    string

	// LegacyType is the legacy column name for Kind ("type").
	LegacyType string
}

var GameMediaTable = GameMediaTableT{
	Table:        "game_media",
	ID:           "id",
	VideoGameID:  "video_game_id",
	Source:       "source",
	ExternalID:   "external_id",
	Kind:         "kind",
	Slug:         "slug",
	URL:          "url",
	OriginalURL:  "original_url",
	ThumbnailURL: "thumbnail_url",
	StreamURL:    "stream_url",
	PosterURL:    "poster_url",
	ProviderData: "provider_data",
	SortOrder:    "sort_order",
	LegacyType:   "type",
}

func (t GameMediaTableT) Columns() []string {
	return []string{
		t.ID, t.VideoGameID, t.Source, t.ExternalID, t.Kind, t.Slug, t.URL,
		t.OriginalURL, t.ThumbnailURL, t.StreamURL, t.PosterURL,
		t.ProviderData, t.SortOrder,
	}
}

// ImportCheckpointTableT names the columns of the
// `legacy_import_checkpoints` table written by the Legacy Snapshot Driver.
type ImportCheckpointTableT struct {
	Table        string
	Source       string
	LastLegacyID string
	UpdatedAt    string
}

var ImportCheckpointTable = ImportCheckpointTableT{
	Table:        "legacy_import_checkpoints",
	Source:       "source",
	LastLegacyID: "last_legacy_id",
	UpdatedAt:    "updated_at",
}

func (t ImportCheckpointTableT) Columns() []string {
	return []string{t.Source, t.LastLegacyID, t.UpdatedAt}
}
