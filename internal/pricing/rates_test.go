// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pricing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gamecatalog/internal/pricing"
)

type fakeExchangeSource struct {
	rates map[string]float64
}

func (f *fakeExchangeSource) LatestRate(_ context.Context, base, quote string) (float64, bool, error) {
	rate, ok := f.rates[base+"/"+quote]
	return rate, ok, nil
}

// TestExchangeRateResolver_DirectRate confirms a direct base/quote rate is
// returned as-is, with no inversion.
func TestExchangeRateResolver_DirectRate(t *testing.T) {
	source := &fakeExchangeSource{rates: map[string]float64{"EUR/USD": 1.08}}
	resolver := pricing.NewExchangeRateResolver(source, nil)

	rate, ok := resolver.USDRate(context.Background(), "EUR")
	require.True(t, ok)
	assert.InDelta(t, 1.08, rate, 1e-9)
}

// TestExchangeRateResolver_InverseFallback confirms the Laravel-style
// fallback: when no direct rate exists, invert the quote/base rate and
// round to 12 decimal places.
func TestExchangeRateResolver_InverseFallback(t *testing.T) {
	source := &fakeExchangeSource{rates: map[string]float64{"USD/JPY": 150.0}}
	resolver := pricing.NewExchangeRateResolver(source, nil)

	rate, ok := resolver.USDRate(context.Background(), "JPY")
	require.True(t, ok)
	assert.InDelta(t, 1.0/150.0, rate, 1e-12)
}

// TestExchangeRateResolver_SameCurrencyIsUnity confirms base == quote short-
// circuits to 1.0 without consulting the exchange source.
func TestExchangeRateResolver_SameCurrencyIsUnity(t *testing.T) {
	resolver := pricing.NewExchangeRateResolver(&fakeExchangeSource{}, nil)

	rate, ok := resolver.USDRate(context.Background(), "USD")
	require.True(t, ok)
	assert.Equal(t, 1.0, rate)
}

// TestExchangeRateResolver_BTCRateMissing confirms a missing BTC rate is
// reported as not-found (so the caller inserts NULL) rather than erroring.
func TestExchangeRateResolver_BTCRateMissing(t *testing.T) {
	resolver := pricing.NewExchangeRateResolver(&fakeExchangeSource{rates: map[string]float64{}}, nil)

	_, ok := resolver.BTCRate(context.Background(), "XYZ")
	assert.False(t, ok)
}

// TestToSatoshiPrecision exercises the half-away-from-zero rounding at 1e-8,
// per the ingestor's documented examples.
func TestToSatoshiPrecision(t *testing.T) {
	assert.InDelta(t, 0.12345679, pricing.ToSatoshiPrecision(0.123456785), 1e-12)
	assert.Equal(t, 1.0, pricing.ToSatoshiPrecision(1.0))
}
