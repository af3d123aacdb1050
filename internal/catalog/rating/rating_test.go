// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gamecatalog/internal/catalog/rating"
)

func TestExtractNormalizedRating_GenericAlias_ZeroToFive(t *testing.T) {
	payload := map[string]any{"user_ratings": 4.25}
	r, ok := rating.ExtractNormalizedRating("provider_a", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.25, r, 0.0001)
}

func TestExtractNormalizedRating_GenericAlias_ZeroToHundred(t *testing.T) {
	payload := map[string]any{"aggregated_rating": 80.0}
	r, ok := rating.ExtractNormalizedRating("provider_b", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.0, r, 0.0001)
}

func TestExtractNormalizedRating_StarString(t *testing.T) {
	payload := map[string]any{"product_star_rating": "4.5 stars"}
	r, ok := rating.ExtractNormalizedRating("provider_c", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.5, r, 0.0001)
}

func TestExtractNormalizedRating_KeyVariantsAndFormats(t *testing.T) {
	payload := map[string]any{
		"averageRating": "4.2/5",
		"meta":          map[string]any{"metacritic_score": 80.0},
		"other":         map[string]any{"userRating": map[string]any{"value": 8.0, "max": 10.0}},
	}
	r, ok := rating.ExtractNormalizedRating("", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.2, r, 0.0001, "averageRating alias must win over fuzzy candidates")
}

func TestExtractNormalizedRating_DoesNotMatchOperatingAsRating(t *testing.T) {
	payload := map[string]any{"operating": "windows", "version": 11.0}
	_, ok := rating.ExtractNormalizedRating("", payload)
	assert.False(t, ok, `"operating" must not tokenize as containing "rating"`)
}

func TestExtractNormalizedRating_BareScoreNotRating(t *testing.T) {
	payload := map[string]any{"high_score": 999.0}
	_, ok := rating.ExtractNormalizedRating("", payload)
	assert.False(t, ok, "a bare score key unpaired with meta/critic must not be treated as a rating")
}

func TestExtractNormalizedRating_ScoreQualifiedByMetacritic(t *testing.T) {
	payload := map[string]any{"metacritic_score": 90.0}
	r, ok := rating.ExtractNormalizedRating("", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.5, r, 0.0001)
}

func TestExtractNormalizedRating_NestedValueMaxShape(t *testing.T) {
	payload := map[string]any{"community_rating": map[string]any{"value": 7.0, "max": 10.0}}
	r, ok := rating.ExtractNormalizedRating("", payload)
	require.True(t, ok)
	assert.InDelta(t, 3.5, r, 0.0001)
}

func TestExtractNormalizedRating_OutOfForm(t *testing.T) {
	payload := map[string]any{"rating": "8 out of 10"}
	r, ok := rating.ExtractNormalizedRating("", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.0, r, 0.0001)
}

func TestExtractNormalizedRating_PercentForm(t *testing.T) {
	payload := map[string]any{"critic_rating": "80%"}
	r, ok := rating.ExtractNormalizedRating("", payload)
	require.True(t, ok)
	assert.InDelta(t, 4.0, r, 0.0001)
}

func TestExtractNormalizedRating_OutOfRangeRejected(t *testing.T) {
	payload := map[string]any{"rating": 50000.0}
	_, ok := rating.ExtractNormalizedRating("", payload)
	assert.False(t, ok)
}
