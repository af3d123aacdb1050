// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitycache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gamecatalog/internal/catalog/entitycache"
)

/*
TestCache_PlatformID verifies miss-then-hit semantics for a single kind.
*/
func TestCache_PlatformID(t *testing.T) {
	c := entitycache.New()

	_, ok := c.PlatformID("playstation-5")
	assert.False(t, ok)

	c.PutPlatformID("playstation-5", 42)
	id, ok := c.PlatformID("playstation-5")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

/*
TestCache_JurisdictionID verifies the composite (countryID, regionCode) key
distinguishes entries that share one component.
*/
func TestCache_JurisdictionID(t *testing.T) {
	c := entitycache.New()

	c.PutJurisdictionID(1, "US-CA", 100)
	c.PutJurisdictionID(1, "US-NY", 200)
	c.PutJurisdictionID(2, "US-CA", 300)

	id, ok := c.JurisdictionID(1, "US-CA")
	assert.True(t, ok)
	assert.Equal(t, int64(100), id)

	id, ok = c.JurisdictionID(1, "US-NY")
	assert.True(t, ok)
	assert.Equal(t, int64(200), id)

	id, ok = c.JurisdictionID(2, "US-CA")
	assert.True(t, ok)
	assert.Equal(t, int64(300), id)

	_, ok = c.JurisdictionID(2, "US-NY")
	assert.False(t, ok)
}

/*
TestCache_SellableID verifies the (kind, refID) composite key similarly
distinguishes a software sellable from a console sellable sharing an id.
*/
func TestCache_SellableID(t *testing.T) {
	c := entitycache.New()

	c.PutSellableID("software", 7, 701)
	c.PutSellableID("console", 7, 702)

	id, ok := c.SellableID("software", 7)
	assert.True(t, ok)
	assert.Equal(t, int64(701), id)

	id, ok = c.SellableID("console", 7)
	assert.True(t, ok)
	assert.Equal(t, int64(702), id)
}

/*
TestCache_Clear verifies every entity kind is dropped, not just one.
*/
func TestCache_Clear(t *testing.T) {
	c := entitycache.New()

	c.PutPlatformID("ps5", 1)
	c.PutCurrencyID("USD", 2)
	c.PutCountryID("US", 3)
	c.PutJurisdictionID(3, "US-CA", 4)
	c.PutRetailerID("steam", 5)
	c.PutProviderID("igdb", 6)
	c.PutProductID("halo", 7)
	c.PutSellableID("software", 7, 8)

	c.Clear()

	_, ok := c.PlatformID("ps5")
	assert.False(t, ok)
	_, ok = c.CurrencyID("USD")
	assert.False(t, ok)
	_, ok = c.CountryID("US")
	assert.False(t, ok)
	_, ok = c.JurisdictionID(3, "US-CA")
	assert.False(t, ok)
	_, ok = c.RetailerID("steam")
	assert.False(t, ok)
	_, ok = c.ProviderID("igdb")
	assert.False(t, ok)
	_, ok = c.ProductID("halo")
	assert.False(t, ok)
	_, ok = c.SellableID("software", 7)
	assert.False(t, ok)
}

/*
TestCache_IndependentKinds verifies that putting a value under one entity
kind never leaks into another kind's namespace, even with colliding keys.
*/
func TestCache_IndependentKinds(t *testing.T) {
	c := entitycache.New()

	c.PutCurrencyID("X", 1)
	c.PutCountryID("X", 2)
	c.PutRetailerID("X", 3)

	id, ok := c.CurrencyID("X")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	id, ok = c.CountryID("X")
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)

	id, ok = c.RetailerID("X")
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)
}
