// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pricing

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/taibuivan/gamecatalog/internal/platform/ratecache"
)

// ExchangeSource is the upstream exchange-rate lookup an [ExchangeRateResolver]
// wraps. A single LatestRate call resolves base/quote directly; the Laravel-
// style inverse fallback and caching live in this package, not here.
type ExchangeSource interface {
	// LatestRate returns the most recent base/quote rate, or false if no
	// rate is on file for that pair.
	LatestRate(ctx context.Context, base, quote string) (float64, bool, error)
}

// ExchangeRateResolver implements [RateResolver] over an [ExchangeSource],
// fronted by an in-process per-currency cache and an optional Redis-backed
// shared cache (nil when REDIS_URL is unset).
type ExchangeRateResolver struct {
	source ExchangeSource
	shared *ratecache.Client

	mu       sync.Mutex
	btcCache map[string]*float64
	usdCache map[string]float64
}

// NewExchangeRateResolver constructs an [ExchangeRateResolver]. shared may
// be nil.
func NewExchangeRateResolver(source ExchangeSource, shared *ratecache.Client) *ExchangeRateResolver {
	return &ExchangeRateResolver{
		source:   source,
		shared:   shared,
		btcCache: make(map[string]*float64),
		usdCache: make(map[string]float64),
	}
}

// USDRate implements [RateResolver].
func (r *ExchangeRateResolver) USDRate(ctx context.Context, currencyCode string) (float64, bool) {
	r.mu.Lock()
	if v, ok := r.usdCache[currencyCode]; ok {
		r.mu.Unlock()
		return v, true
	}
	r.mu.Unlock()

	if r.shared != nil {
		if v, ok := r.shared.GetRate(ctx, usdCacheKey(currencyCode)); ok {
			r.mu.Lock()
			r.usdCache[currencyCode] = v
			r.mu.Unlock()
			return v, true
		}
	}

	rate, ok, err := r.resolveLikeLaravel(ctx, currencyCode, "USD")
	if err != nil || !ok {
		return 0, false
	}

	r.mu.Lock()
	r.usdCache[currencyCode] = rate
	r.mu.Unlock()
	if r.shared != nil {
		_ = r.shared.SetRate(ctx, usdCacheKey(currencyCode), rate)
	}
	return rate, true
}

// BTCRate implements [RateResolver]. A prior negative lookup (no rate on
// file) is cached too, so repeat calls for the same currency within a run
// don't re-hit the exchange source.
func (r *ExchangeRateResolver) BTCRate(ctx context.Context, currencyCode string) (float64, bool) {
	r.mu.Lock()
	if cached, ok := r.btcCache[currencyCode]; ok {
		r.mu.Unlock()
		if cached == nil {
			return 0, false
		}
		return *cached, true
	}
	r.mu.Unlock()

	if r.shared != nil {
		if v, ok := r.shared.GetRate(ctx, btcCacheKey(currencyCode)); ok {
			r.mu.Lock()
			r.btcCache[currencyCode] = &v
			r.mu.Unlock()
			return v, true
		}
	}

	rate, ok, err := r.resolveLikeLaravel(ctx, currencyCode, "BTC")
	if err != nil || !ok {
		r.mu.Lock()
		r.btcCache[currencyCode] = nil
		r.mu.Unlock()
		return 0, false
	}

	r.mu.Lock()
	r.btcCache[currencyCode] = &rate
	r.mu.Unlock()
	if r.shared != nil {
		_ = r.shared.SetRate(ctx, btcCacheKey(currencyCode), rate)
	}
	return rate, true
}

// resolveLikeLaravel mirrors the Laravel exchange-rate convention: try the
// direct base/quote rate; if absent, take the quote/base rate and invert it,
// rounding to 12 decimal places the way Laravel's bcmath helpers do.
func (r *ExchangeRateResolver) resolveLikeLaravel(ctx context.Context, base, quote string) (float64, bool, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return 0, false, nil
	}
	if base == quote {
		return 1, true, nil
	}

	if direct, ok, err := r.source.LatestRate(ctx, base, quote); err != nil {
		return 0, false, err
	} else if ok {
		return direct, true, nil
	}

	inverse, ok, err := r.source.LatestRate(ctx, quote, base)
	if err != nil {
		return 0, false, err
	}
	if !ok || inverse == 0 {
		return 0, false, nil
	}

	v := 1 / inverse
	return math.Round(v*1e12) / 1e12, true, nil
}

func usdCacheKey(currencyCode string) string { return currencyCode + ":USD" }
func btcCacheKey(currencyCode string) string { return currencyCode + ":BTC" }
