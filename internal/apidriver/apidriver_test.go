// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestHashResolver_PriorityChain verifies each rung of the resolution chain
wins over everything below it, and that the chain bottoms out at the
built-in static fallback.
*/
func TestHashResolver_PriorityChain(t *testing.T) {
	fs := afero.NewMemMapFs()

	hashesJSON := `{
		"en-us::categoryGridRetrieve": "1111111111111111111111111111111111111111111111111111111111111111",
		"metGetProductById": "2222222222222222222222222222222222222222222222222222222222222222"
	}`
	require.NoError(t, afero.WriteFile(fs, "hashes.json", []byte(hashesJSON), 0o644))

	collectionJSON := `{"item":[{"name":"metGetConceptById","request":{"url":{"query":[
		{"key":"extensions","value":"{\"persistedQuery\":{\"version\":1,\"sha256Hash\":\"3333333333333333333333333333333333333333333333333333333333333333\"}}"}
	]}}}]}`
	require.NoError(t, afero.WriteFile(fs, "collection.json", []byte(collectionJSON), 0o644))

	r := loadHashResolver(fs, "hashes.json", "collection.json", "", "")

	hash, source := r.resolve("categoryGridRetrieve", "en-US")
	assert.Equal(t, "1111111111111111111111111111111111111111111111111111111111111111", hash)
	assert.Equal(t, "hashes_json_locale", source)

	hash, source = r.resolve("metGetProductById", "fr-FR")
	assert.Equal(t, "2222222222222222222222222222222222222222222222222222222222222222", hash)
	assert.Equal(t, "hashes_json_op", source)

	hash, source = r.resolve("metGetConceptById", "fr-FR")
	assert.Equal(t, "3333333333333333333333333333333333333333333333333333333333333333", hash)
	assert.Equal(t, "collection_export", source)

	hash, source = r.resolve("featuresRetrieve", "fr-FR")
	assert.Equal(t, staticHashFallback["featuresRetrieve"], hash)
	assert.Equal(t, "static_fallback", source)

	hash, source = r.resolve("unknownOperation", "fr-FR")
	assert.Empty(t, hash)
	assert.Equal(t, "none", source)
}

/*
TestHashResolver_EnvOverridesBeatFile verifies dedicated and generic env
vars outrank hashes.json, and that the legacy categoryGridRetrieve-only
PS_HASH global sits below the file sources but above PSSTORE_SHA256.
*/
func TestHashResolver_EnvOverridesBeatFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "hashes.json", []byte(`{"categoryGridRetrieve":"aaaa"}`), 0o644))

	t.Setenv("PS_HASH_categoryGridRetrieve_EN_US", "dedicated")
	r := loadHashResolver(fs, "hashes.json", "collection.json", "legacy-global", "legacy-sha")
	hash, source := r.resolve("categoryGridRetrieve", "en-US")
	assert.Equal(t, "dedicated", hash)
	assert.Equal(t, "env_dedicated", source)

	os.Unsetenv("PS_HASH_categoryGridRetrieve_EN_US")
	t.Setenv("PS_HASH_categoryGridRetrieve", "generic")
	hash, source = r.resolve("categoryGridRetrieve", "en-US")
	assert.Equal(t, "generic", hash)
	assert.Equal(t, "env_generic", source)

	os.Unsetenv("PS_HASH_categoryGridRetrieve")
	hash, source = r.resolve("categoryGridRetrieve", "en-US")
	assert.Equal(t, "aaaa", hash) // hashes.json (bare "op" key; isHexDigits is loose enough to allow it here)
	assert.Equal(t, "hashes_json_op", source)

	hash, source = r.resolve("metGetAddOnsByTitleId", "en-US")
	assert.Equal(t, "legacy-sha", hash)
	assert.Equal(t, "env_legacy_sha256", source)
}

/*
TestCacheKey_StableAndSensitive verifies cacheKey is deterministic across
calls and changes whenever any one of op/locale/hash/variables changes.
*/
func TestCacheKey_StableAndSensitive(t *testing.T) {
	base := cacheKey("categoryGridRetrieve", "en-US", "abc123", map[string]any{"categoryId": "1"})
	again := cacheKey("categoryGridRetrieve", "en-US", "abc123", map[string]any{"categoryId": "1"})
	assert.Equal(t, base, again)

	assert.NotEqual(t, base, cacheKey("metGetProductById", "en-US", "abc123", map[string]any{"categoryId": "1"}))
	assert.NotEqual(t, base, cacheKey("categoryGridRetrieve", "fr-FR", "abc123", map[string]any{"categoryId": "1"}))
	assert.NotEqual(t, base, cacheKey("categoryGridRetrieve", "en-US", "def456", map[string]any{"categoryId": "1"}))
	assert.NotEqual(t, base, cacheKey("categoryGridRetrieve", "en-US", "abc123", map[string]any{"categoryId": "2"}))
}

/*
TestLocaleLimiters_FloorsBelowMinRPS verifies a configured rate below
minRPS is raised to the floor rather than starving requests.
*/
func TestLocaleLimiters_FloorsBelowMinRPS(t *testing.T) {
	l := newLocaleLimiters(1)
	assert.Equal(t, minRPS, l.rps)

	require.NoError(t, l.wait(context.Background(), "en-US"))
}

/*
TestCanonicalLocale verifies mixed-case/underscore locale strings normalize
to the "ll-CC" form the store's header expects, and odd inputs pass through.
*/
func TestCanonicalLocale(t *testing.T) {
	assert.Equal(t, "en-US", canonicalLocale("en_us"))
	assert.Equal(t, "fr-FR", canonicalLocale("FR-fr"))
	assert.Equal(t, "notalocale", canonicalLocale("notalocale"))
}

/*
TestClassifyGraphQLErrors verifies known transient/non-retryable message
patterns map to their typed errors, and unrecognized ones fall back to a
generic error with isRetryable()==false.
*/
func TestClassifyGraphQLErrors(t *testing.T) {
	err := classifyGraphQLErrors("categoryGridRetrieve", "en-US", []string{"Persisted Query Not Found"}, nil)
	var pqErr *PersistedQueryError
	require.ErrorAs(t, err, &pqErr)
	assert.False(t, isRetryable(err))

	err = classifyGraphQLErrors("categoryGridRetrieve", "en-US", []string{"all shards failed"}, nil)
	var shardErr *ElasticsearchShardError
	require.ErrorAs(t, err, &shardErr)
	assert.True(t, isRetryable(err))

	err = classifyGraphQLErrors("categoryGridRetrieve", "en-US", nil, []string{transientExtensionCode})
	require.ErrorAs(t, err, &shardErr)

	err = classifyGraphQLErrors("categoryGridRetrieve", "en-US", []string{"something else broke"}, nil)
	require.Error(t, err)
	assert.False(t, isRetryable(err))
}

/*
TestIsRetryable_HTTPStatusBoundary verifies only 5xx HTTPErrors are
retried; 4xx responses (bad request, auth, not found) are not.
*/
func TestIsRetryable_HTTPStatusBoundary(t *testing.T) {
	assert.True(t, isRetryable(&HTTPError{Status: 503}))
	assert.False(t, isRetryable(&HTTPError{Status: 404}))
	assert.False(t, isRetryable(&HTTPError{Status: 400}))
	assert.True(t, isRetryable(&NetError{Cause: assertErr{}}))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

/*
TestExtractProductSummaries verifies a categoryGridRetrieve payload is
normalized into ProductSummary rows, media URLs are split by type, and
items with no id are dropped.
*/
func TestExtractProductSummaries(t *testing.T) {
	raw := json.RawMessage(`{
		"categoryGridRetrieve": {
			"items": [
				{
					"id": "UP0001-CUSA00001_00-GAME0000000001",
					"concept": {"id": "10001"},
					"name": "Example Game",
					"releaseDate": "2024-03-01",
					"isFree": false,
					"defaultSku": {"basePriceValue": 5999, "discountedPriceValue": 2999},
					"media": [
						{"type": "IMAGE", "url": "https://example.com/cover.jpg"},
						{"type": "GAMEPLAY_VIDEO", "url": "https://example.com/trailer.mp4"}
					],
					"productGenres": ["Action", "Action", "RPG"]
				},
				{"id": ""}
			]
		}
	}`)

	out, err := extractProductSummaries(raw)
	require.NoError(t, err)
	require.Len(t, out, 1)

	item := out[0]
	assert.Equal(t, "UP0001-CUSA00001_00-GAME0000000001", item.ProductID)
	assert.Equal(t, "10001", item.ConceptID)
	assert.Equal(t, []int64{5999, 2999}, []int64{*item.BasePriceMinor, *item.DiscountedMinor})
	assert.Equal(t, []string{"https://example.com/cover.jpg"}, item.MediaImageURLs)
	assert.Equal(t, []string{"https://example.com/trailer.mp4"}, item.MediaVideoURLs)
	assert.Equal(t, []string{"Action", "RPG"}, item.Genres)
}

/*
TestExtractStarRating verifies a zero-count rating is treated as absent
rather than a real zero-star rating.
*/
func TestExtractStarRating(t *testing.T) {
	avg, count, ok := extractStarRating(json.RawMessage(`{"wcaProductStarRatingRetrieve":{"aggregatedRating":{"average":4.5,"count":120}}}`))
	assert.True(t, ok)
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, int64(120), count)

	_, _, ok = extractStarRating(json.RawMessage(`{"wcaProductStarRatingRetrieve":{"aggregatedRating":{"average":0,"count":0}}}`))
	assert.False(t, ok)
}

/*
TestDedupSorted verifies duplicate and empty entries are removed and the
result is sorted, independent of input order.
*/
func TestDedupSorted(t *testing.T) {
	assert.Equal(t, []string{"Action", "RPG"}, dedupSorted([]string{"RPG", "Action", "RPG", ""}))
	assert.Nil(t, dedupSorted(nil))
}

/*
TestMinorToDecimal verifies minor-unit amounts render with a zero-padded
fractional part, including negative amounts.
*/
func TestMinorToDecimal(t *testing.T) {
	assert.Equal(t, "59.99", minorToDecimal(5999))
	assert.Equal(t, "5.05", minorToDecimal(505))
	assert.Equal(t, "-1.00", minorToDecimal(-100))
}
