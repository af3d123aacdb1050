// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
)

// TestNormalizeSource_Aliases confirms known PSN/Steam aliases collapse to
// their canonical label.
func TestNormalizeSource_Aliases(t *testing.T) {
	assert.Equal(t, "psstore", normalizeSource("psn"))
	assert.Equal(t, "psstore", normalizeSource("ps-store"))
	assert.Equal(t, "psstore", normalizeSource("PlayStation-Store"))
	assert.Equal(t, "steam", normalizeSource("steampowered"))
	assert.Equal(t, "gog", normalizeSource("gog"))
}

// TestSortPriority_Ordering confirms cover < background < artwork <
// screenshot < other.
func TestSortPriority_Ordering(t *testing.T) {
	assert.Less(t, sortPriority("cover"), sortPriority("background"))
	assert.Less(t, sortPriority("background"), sortPriority("artwork"))
	assert.Less(t, sortPriority("artwork"), sortPriority("screenshot"))
	assert.Less(t, sortPriority("screenshot"), sortPriority("other-label"))
}

// TestDedupeByKey_DropsSelfDuplicates confirms two rows sharing a
// (video_game_id, normalized_source, external_id) key collapse to one,
// keeping the first.
func TestDedupeByKey_DropsSelfDuplicates(t *testing.T) {
	first := "First Title"
	second := "Second Title"
	rows := []model.MediaRow{
		{VideoGameID: 1, Source: "psn", ExternalID: "X", Title: &first},
		{VideoGameID: 1, Source: "playstation-store", ExternalID: "X", Title: &second},
		{VideoGameID: 1, Source: "psn", ExternalID: "Y", Title: &second},
	}

	deduped := dedupeByKey(rows)

	assert.Len(t, deduped, 2)
	assert.Equal(t, &first, deduped[0].Title)
}

// TestDeriveURLs_PicksHTTPValuesOnly confirms non-URL-shaped values under a
// known key are ignored rather than propagated.
func TestDeriveURLs_PicksHTTPValuesOnly(t *testing.T) {
	data := map[string]any{
		"thumbnail_url": "https://example.com/thumb.jpg",
		"poster_url":    "not-a-url",
	}

	original, thumbnail, stream, poster := deriveURLs(data)

	assert.Nil(t, original)
	assert.NotNil(t, thumbnail)
	assert.Equal(t, "https://example.com/thumb.jpg", *thumbnail)
	assert.Nil(t, stream)
	assert.Nil(t, poster)
}
