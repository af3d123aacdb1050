// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apidriver implements the API Driver: a persisted-query GraphQL
client for the PlayStation Store catalog, used to enrich rows the Legacy
Snapshot Driver already wrote with ratings, pricing, and media the SQLite
export never carried.

A Client resolves each operation's persisted-query hash through the chain
described in spec.md §4.9, rate-limits and retries requests per locale, and
optionally caches error-free responses on disk. Driver wires a Client to the
Upsert Engine and the Media Ingestor to turn parsed
responses into catalog rows, bounded by a PS_ENRICH_CONCURRENCY semaphore.
*/
package apidriver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/afero"

	"github.com/taibuivan/gamecatalog/internal/platform/config"
)

const defaultBaseURL = "https://web.np.playstation.com/api/graphql/v1/"

// Client issues persisted-query requests against the PlayStation Store
// GraphQL endpoint, the same httpClient+fs-backed-persistence shape as
// Zaparoo's arcade-database client, extended with hash resolution, a
// per-locale rate limiter, retry/backoff, and an on-disk response cache.
type Client struct {
	httpClient *http.Client
	fs         afero.Fs
	cfg        config.APIDriverConfig
	hashes     *hashResolver
	limiters   *localeLimiters
	cache      *responseCache
	drift      *driftLogger
	log        *slog.Logger
}

// New constructs a Client from cfg, loading the hash-resolution sources and
// opening the on-disk response cache under cfg.CacheDir (best-effort — a
// cache open failure disables caching rather than failing the whole run).
func New(cfg config.APIDriverConfig, log *slog.Logger) *Client {
	fs := afero.NewOsFs()
	_ = fs.MkdirAll(cfg.CacheDir, 0o750)

	var cache *responseCache
	if c, err := openResponseCache(cfg.CacheDir+"/responses.db", cfg.CacheTTLSecs); err == nil {
		cache = c
	} else {
		log.Warn("apidriver_cache_disabled", slog.Any("error", err))
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		fs:         fs,
		cfg:        cfg,
		hashes:     loadHashResolver(fs, cfg.HashesFile, cfg.CollectionFile, cfg.HashGlobal, cfg.HashLegacySHA256),
		limiters:   newLocaleLimiters(cfg.RPS),
		cache:      cache,
		drift:      newDriftLogger(fs, cfg.DriftFile),
		log:        log,
	}
}

// Close releases the on-disk cache handle.
func (c *Client) Close() error {
	return c.cache.close()
}

// graphqlEnvelope is the shape of every GraphQL response this client reads,
// enough to detect errors before handing the data payload to a caller.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

// Do executes one persisted-query operation for locale, returning the
// decoded "data" payload. It rate-limits per locale, retries per
// cfg.RetryAttempts/RetryBaseDelayMS on retryable failures, and serves from
// the on-disk cache when a fresh, error-free entry exists.
func (c *Client) Do(ctx context.Context, op, locale string, variables map[string]any) (json.RawMessage, error) {
	hash, source := c.hashes.resolve(op, locale)
	if source != "static_fallback" && source != "none" {
		if staticHash, ok := staticHashFallback[op]; ok && staticHash != hash {
			c.drift.observe(op, locale, hash, source, "effective hash differs from static default")
		}
	}

	key := cacheKey(op, locale, hash, variables)
	if payload, ok := c.cache.get(key); ok {
		return payload, nil
	}

	var result json.RawMessage
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = time.Duration(c.cfg.RetryBaseDelayMS) * time.Millisecond
	expBackoff.Multiplier = 2
	expBackoff.MaxElapsedTime = 0 // bounded by MaxRetries below, not wall-clock
	policy := backoff.WithMaxRetries(expBackoff, uint64(maxInt(c.cfg.RetryAttempts-1, 0)))

	err := backoff.Retry(func() error {
		if err := c.limiters.wait(ctx, locale); err != nil {
			return backoff.Permanent(err)
		}
		payload, attemptErr := c.doOnce(ctx, op, locale, hash, variables)
		if attemptErr != nil {
			if !isRetryable(attemptErr) {
				return backoff.Permanent(attemptErr)
			}
			return attemptErr
		}
		result = payload
		return nil
	}, backoff.WithContext(policy, ctx))

	if err != nil {
		c.drift.observe(op, locale, hash, source, fmt.Sprintf("request failed: %v", err))
		return nil, err
	}

	if err := c.cache.put(key, result); err != nil {
		c.log.Warn("apidriver_cache_write_failed", slog.String("op", op), slog.Any("error", err))
	}
	return result, nil
}

func (c *Client) doOnce(ctx context.Context, op, locale, hash string, variables map[string]any) (json.RawMessage, error) {
	reqURL, err := c.buildURL(op, hash, variables)
	if err != nil {
		return nil, &JSONError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &NetError{Cause: err}
	}
	c.applyHeaders(req, locale)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetError{Cause: err}
	}

	c.log.Info("apidriver_request",
		slog.String("op", op), slog.String("locale", locale),
		slog.Int("status", resp.StatusCode), slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var env graphqlEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &JSONError{Cause: err}
	}
	if len(env.Errors) > 0 {
		messages := make([]string, 0, len(env.Errors))
		codes := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			messages = append(messages, e.Message)
			if code, ok := e.Extensions["code"].(string); ok {
				codes = append(codes, code)
			}
		}
		return nil, classifyGraphQLErrors(op, locale, messages, codes)
	}

	return env.Data, nil
}

func (c *Client) buildURL(op, hash string, variables map[string]any) (string, error) {
	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("operationName", op)
	q.Set("variables", string(varsJSON))
	if hash != "" {
		ext := fmt.Sprintf(`{"persistedQuery":{"version":1,"sha256Hash":"%s"}}`, hash)
		q.Set("extensions", ext)
	}

	return defaultBaseURL + "?" + q.Encode(), nil
}

func (c *Client) applyHeaders(req *http.Request, locale string) {
	req.Header.Set("x-psn-store-locale-override", canonicalLocale(locale))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", firstNonEmptyStr(c.cfg.UserAgent, "Mozilla/5.0"))
	if c.cfg.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Bearer)
	} else if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.Cookie != "" {
		req.Header.Set("Cookie", c.cfg.Cookie)
	}
}

// canonicalLocale turns "en_us"/"en-US"/"EN-us" into the "en-US" form the
// store's locale-override header expects.
func canonicalLocale(locale string) string {
	parts := strings.FieldsFunc(locale, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) != 2 {
		return locale
	}
	return strings.ToLower(parts[0]) + "-" + strings.ToUpper(parts[1])
}

func firstNonEmptyStr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
