// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratecache provides an optional shared cache for FX and BTC exchange
rates fronting the Pricing Ingestor's per-currency in-process cache.

It is adapted from the teacher's session/password-reset-token Redis client:
same connection management and pool tuning, repurposed from short-lived auth
tokens into a TTL-bounded exchange-rate cache shared across pipeline runs so
repeated imports don't re-hit the upstream exchange-rate service for the same
currency within the TTL window.

Core Responsibilities:

  - Volatility: Rates are cached with a bounded TTL, never treated as durable.
  - Optionality: When REDIS_URL is unset, [NewClient] is never called and the
    Pricing Ingestor falls back to its in-process cache alone.
*/
package ratecache

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Opinionated default timeouts for rate-cache operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second

	keyPrefix = "gamecatalog:fxrate:"
)

// Client wraps a *redis.Client scoped to exchange-rate lookups.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient parses a Redis URL and returns a ready-to-use rate cache client.
// ttl bounds how long a cached rate is trusted before a fresh lookup is forced.
func NewClient(ctx stdctx.Context, redisURL string, ttl time.Duration, logger *slog.Logger) (*Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("ratecache: invalid URL: %w", err)
	}

	options.PoolSize = 10
	options.MinIdleConns = 2
	options.MaxIdleConns = 5
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	rdb := redis.NewClient(options)

	if err := Ping(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	logger.Info("ratecache client connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(ctx stdctx.Context, rdb *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ratecache: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// HealthCheck pings the underlying Redis connection, for wiring into the ops
// server's readiness probe.
func (c *Client) HealthCheck(ctx stdctx.Context) error {
	if c == nil {
		return nil
	}
	return Ping(ctx, c.rdb)
}

// GetRate returns the cached exchange rate for currencyCode (to the pricing
// base unit), and whether it was found (and not expired).
func (c *Client) GetRate(ctx stdctx.Context, currencyCode string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+currencyCode).Result()
	if err != nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return rate, true
}

// SetRate stores an exchange rate for currencyCode with the client's
// configured TTL.
func (c *Client) SetRate(ctx stdctx.Context, currencyCode string, rate float64) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, keyPrefix+currencyCode, strconv.FormatFloat(rate, 'f', -1, 64), c.ttl).Err()
}
