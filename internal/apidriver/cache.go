// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("responses")

// responseCache is an optional on-disk cache of successful (error-free)
// persisted-query responses, keyed by a stable 64-bit hash of
// (op, locale, sha256, variables) per spec.md §4.9.
type responseCache struct {
	db  *bolt.DB
	ttl time.Duration
}

type cacheEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

func openResponseCache(path string, ttlSeconds int) (*responseCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("apidriver: open cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apidriver: init cache bucket: %w", err)
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 7200
	}
	return &responseCache{db: db, ttl: time.Duration(ttlSeconds) * time.Second}, nil
}

func (c *responseCache) close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// cacheKey hashes (op, locale, sha256, variables) into a stable 16-hex-char
// key — xxhash over op, locale and hash joined by NUL bytes, followed by the
// variables' encoding/json encoding, which is stable because encoding/json
// writes map keys in sorted order.
func cacheKey(op, locale, sha256Hash string, variables map[string]any) string {
	h := xxhash.New()
	_, _ = h.WriteString(op)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(locale)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sha256Hash)
	_, _ = h.WriteString("\x00")
	canonical, _ := json.Marshal(canonicalizeVariables(variables))
	_, _ = h.Write(canonical)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h.Sum64())
	return fmt.Sprintf("%x", buf)
}

// canonicalizeVariables sorts map keys via Go's own json.Marshal behavior
// (already lexicographic for map[string]any), kept as a named step so the
// cache key derivation reads as intentional rather than incidental.
func canonicalizeVariables(variables map[string]any) map[string]any {
	if variables == nil {
		return map[string]any{}
	}
	return variables
}

func (c *responseCache) get(key string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	var entry cacheEntry
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found || time.Since(entry.StoredAt) > c.ttl {
		return nil, false
	}
	return entry.Payload, true
}

func (c *responseCache) put(key string, payload json.RawMessage) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(cacheEntry{StoredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(key), raw)
	})
}
