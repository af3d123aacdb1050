// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestParseCSVList verifies blank entries and surrounding whitespace are
dropped, and an empty/blank input yields nil rather than an empty slice.
*/
func TestParseCSVList(t *testing.T) {
	assert.Nil(t, parseCSVList(""))
	assert.Nil(t, parseCSVList("   "))
	assert.Equal(t, []string{"ps5", "xbox-series-x"}, parseCSVList("ps5, xbox-series-x"))
	assert.Equal(t, []string{"pc"}, parseCSVList(",pc,,"))
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"products", "video_games"}, splitCSV("products, video_games"))
}

/*
TestContext_DerivePlatformIDs verifies the link-derived platforms of a
product are resolved through the legacy platform map, and that the unknown
platform is only used when none resolves.
*/
func TestContext_DerivePlatformIDs(t *testing.T) {
	c := &Context{
		platformByLegacy: map[int64]int64{10: 100, 11: 101},
		productPlatforms: map[int64][]int64{5: {10, 11}},
	}

	ids := c.derivePlatformIDs(5, "", 999)
	assert.ElementsMatch(t, []int64{100, 101}, ids)

	empty := c.derivePlatformIDs(6, "", 999)
	assert.Equal(t, []int64{999}, empty)
}

func TestContext_ProductAndVideoGameMappings(t *testing.T) {
	c := &Context{
		productIDByLegacy:  map[int64]int64{},
		videoGamesByLegacy: map[int64][]int64{},
	}

	_, ok := c.resolvedProductID(1)
	assert.False(t, ok)

	c.putProductID(1, 101)
	id, ok := c.resolvedProductID(1)
	assert.True(t, ok)
	assert.Equal(t, int64(101), id)

	c.addVideoGameMapping(200, 2001)
	c.addVideoGameMapping(200, 2002)
	assert.Equal(t, []int64{2001, 2002}, c.videoGamesForLegacy(200))
	assert.Nil(t, c.videoGamesForLegacy(999))
}

func TestContext_SlugMemo(t *testing.T) {
	c := &Context{existingSlugs: map[string]struct{}{}}

	assert.False(t, c.slugTaken("halo-infinite"))
	c.rememberSlug("halo-infinite")
	assert.True(t, c.slugTaken("halo-infinite"))
}
