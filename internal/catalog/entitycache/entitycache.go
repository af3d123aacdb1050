// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitycache memoizes entity-id lookups for a single pipeline run,
so the Upsert Engine never re-queries the database for an identity it has
already resolved (e.g. the same Platform or Currency referenced by thousands
of rows in one import).

Unlike [ratecache], these caches carry no TTL: they are scoped to one run's
lifetime and explicitly [Cache.Clear]ed between runs rather than expired.
*/
package entitycache

import (
	"strconv"
	"sync"
)

// Cache holds one composite-key map per entity kind. Safe for concurrent use
// from multiple goroutines within a single bounded worker pool.
type Cache struct {
	platforms     sync.Map // name -> int64
	currencies    sync.Map // code -> int64
	countries     sync.Map // iso2 -> int64
	jurisdictions sync.Map // countryID|regionCode -> int64
	retailers     sync.Map // slug -> int64
	providers     sync.Map // slug -> int64
	products      sync.Map // slug -> int64
	sellables     sync.Map // kind|refID -> int64
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{}
}

// Clear drops every memoized entry, for reuse across pipeline runs.
func (c *Cache) Clear() {
	c.platforms.Range(func(k, _ any) bool { c.platforms.Delete(k); return true })
	c.currencies.Range(func(k, _ any) bool { c.currencies.Delete(k); return true })
	c.countries.Range(func(k, _ any) bool { c.countries.Delete(k); return true })
	c.jurisdictions.Range(func(k, _ any) bool { c.jurisdictions.Delete(k); return true })
	c.retailers.Range(func(k, _ any) bool { c.retailers.Delete(k); return true })
	c.providers.Range(func(k, _ any) bool { c.providers.Delete(k); return true })
	c.products.Range(func(k, _ any) bool { c.products.Delete(k); return true })
	c.sellables.Range(func(k, _ any) bool { c.sellables.Delete(k); return true })
}

func get(m *sync.Map, key string) (int64, bool) {
	v, ok := m.Load(key)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// PlatformID / PutPlatformID memoize a canonical platform name -> id.
func (c *Cache) PlatformID(name string) (int64, bool) { return get(&c.platforms, name) }
func (c *Cache) PutPlatformID(name string, id int64)  { c.platforms.Store(name, id) }

// CurrencyID / PutCurrencyID memoize an ISO-4217 code -> id.
func (c *Cache) CurrencyID(code string) (int64, bool) { return get(&c.currencies, code) }
func (c *Cache) PutCurrencyID(code string, id int64)  { c.currencies.Store(code, id) }

// CountryID / PutCountryID memoize an ISO2 code -> id.
func (c *Cache) CountryID(iso2 string) (int64, bool) { return get(&c.countries, iso2) }
func (c *Cache) PutCountryID(iso2 string, id int64)  { c.countries.Store(iso2, id) }

// JurisdictionID / PutJurisdictionID memoize (countryID, regionCode) -> id.
func (c *Cache) JurisdictionID(countryID int64, regionCode string) (int64, bool) {
	return get(&c.jurisdictions, jurisdictionKey(countryID, regionCode))
}
func (c *Cache) PutJurisdictionID(countryID int64, regionCode string, id int64) {
	c.jurisdictions.Store(jurisdictionKey(countryID, regionCode), id)
}

// RetailerID / PutRetailerID memoize a canonical retailer slug -> id.
func (c *Cache) RetailerID(slug string) (int64, bool) { return get(&c.retailers, slug) }
func (c *Cache) PutRetailerID(slug string, id int64)  { c.retailers.Store(slug, id) }

// ProviderID / PutProviderID memoize a provider slug -> id.
func (c *Cache) ProviderID(slug string) (int64, bool) { return get(&c.providers, slug) }
func (c *Cache) PutProviderID(slug string, id int64)  { c.providers.Store(slug, id) }

// ProductID / PutProductID memoize a product slug -> id.
func (c *Cache) ProductID(slug string) (int64, bool) { return get(&c.products, slug) }
func (c *Cache) PutProductID(slug string, id int64)  { c.products.Store(slug, id) }

// SellableID / PutSellableID memoize a (kind, refID) -> id, where refID is
// whichever of ProductID/SoftwareTitleID/ConsoleID applies to kind.
func (c *Cache) SellableID(kind string, refID int64) (int64, bool) {
	return get(&c.sellables, sellableKey(kind, refID))
}
func (c *Cache) PutSellableID(kind string, refID, id int64) {
	c.sellables.Store(sellableKey(kind, refID), id)
}

func jurisdictionKey(countryID int64, regionCode string) string {
	return formatInt(countryID) + "|" + regionCode
}

func sellableKey(kind string, refID int64) string {
	return kind + "|" + formatInt(refID)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
