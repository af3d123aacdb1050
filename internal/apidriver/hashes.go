// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// staticHashFallback is the built-in last-resort map, the bottom of the
// resolution chain — used only when every other source is silent for an
// operation.
var staticHashFallback = map[string]string{
	"categoryGridRetrieve":          "9845afc0dbaab4965f6563fffc703f588c8e76792000e8610843b8d3ee9c4c09",
	"metGetProductById":             "a128042177bd93dd831164103d53b73ef790d56f51dae647064cb8f9d9fc9d1a",
	"metGetConceptById":             "cc90404ac049d935afbd9968aef523da2b6723abfb9d586e5f77ebf7c5289006",
	"metGetConceptByProductIdQuery": "0a4c9f3693b3604df1c8341fdc3e481f42eeecf961a996baaa65e65a657a6433",
	"metGetPricingDataByConceptId":  "abcb311ea830e679fe2b697a27f755764535d825b24510ab1239a4ca3092bd09",
	"wcaProductStarRatingRetrieve":  "cedd370c39e89da20efa7b2e55710e88cb6e6843cc2f8203f7e73ba4751e7253",
	"wcaConceptStarRatingRetrieve":  "e12dc5cef72296a437b4d71e0b130010bf3707ab981b585ba00d1d5773ce2092",
	"metGetAddOnsByTitleId":         "e98d01ff5c1854409a405a5f79b5a9bcd36a5c0679fb33f4e18113c157d4d916",
	"featuresRetrieve":              "010870e8b9269c5bcf06b60190edbf5229310d8fae5b86515ad73f05bd11c4d1",
}

// hashResolver implements the hash resolution chain described in spec.md
// §4.9: dedicated env var, generic PS_HASH_<OP>, a hashes.json file map
// (keyed "locale::op" or bare "op"), a collection-export map, the legacy
// global PS_HASH env var, the PSSTORE_SHA256 env var, then the built-in
// static fallback.
type hashResolver struct {
	fileMap       map[string]string // "locale::op" or "op" -> sha256
	collectionMap map[string]string // "op" -> sha256
	globalHash    string
	legacySHA256  string
}

func loadHashResolver(fs afero.Fs, hashesPath, collectionPath, globalHash, legacySHA256 string) *hashResolver {
	return &hashResolver{
		fileMap:       loadHashesJSON(fs, hashesPath),
		collectionMap: loadCollectionExport(fs, collectionPath),
		globalHash:    globalHash,
		legacySHA256:  legacySHA256,
	}
}

// normalizeLocaleKey lower-cases and hyphenates a locale string into the
// "ll-cc" form used as the hashes.json/collection lookup key.
func normalizeLocaleKey(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	return strings.ToLower(s)
}

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// loadHashesJSON accepts two schemas: a flat {op: hash} map (bare string or
// {sha256Hash: ...} object), and a two-level {locale: {op: hash}} map, which
// is flattened into "locale::op" keys. A read or parse failure yields a nil
// map rather than an error — the resolver falls through to the next source
// in the chain.
func loadHashesJSON(fs afero.Fs, path string) map[string]string {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	out := make(map[string]string)
	for key, val := range doc {
		if hash := extractHashValue(val); hash != "" && isHexDigits(hash) {
			out[key] = hash
			continue
		}
		opsObj, ok := val.(map[string]any)
		if !ok {
			continue
		}
		normLocale := normalizeLocaleKey(key)
		for op, hashVal := range opsObj {
			hash := extractHashValue(hashVal)
			if hash == "" || !isHexDigits(hash) {
				continue
			}
			out[normLocale+"::"+op] = hash
		}
	}
	return out
}

func extractHashValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if s, ok := val["sha256Hash"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// loadCollectionExport parses a Postman-style collection export, pulling
// {op: sha256Hash} pairs out of each item's
// request.url.query[name="extensions"] entry.
func loadCollectionExport(fs afero.Fs, path string) map[string]string {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil
	}

	var doc struct {
		Item []struct {
			Name    string `json:"name"`
			Request struct {
				URL struct {
					Query []struct {
						Key   string `json:"key"`
						Value string `json:"value"`
					} `json:"query"`
				} `json:"url"`
			} `json:"request"`
		} `json:"item"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	out := make(map[string]string)
	for _, item := range doc.Item {
		op := item.Name
		if op == "" {
			continue
		}
		for _, q := range item.Request.URL.Query {
			if q.Key != "extensions" {
				continue
			}
			var ext struct {
				PersistedQuery struct {
					SHA256Hash string `json:"sha256Hash"`
				} `json:"persistedQuery"`
			}
			if json.Unmarshal([]byte(q.Value), &ext) == nil && ext.PersistedQuery.SHA256Hash != "" {
				out[op] = ext.PersistedQuery.SHA256Hash
			}
		}
	}
	return out
}

// resolve returns (hash, source) for op/locale, walking the priority chain
// and stopping at the first non-empty value. source is used purely for
// drift-observation logging.
func (h *hashResolver) resolve(op, locale string) (hash, source string) {
	if v, ok := os.LookupEnv("PS_HASH_" + op + "_" + strings.ToUpper(strings.ReplaceAll(locale, "-", "_"))); ok && v != "" {
		return v, "env_dedicated"
	}
	if v, ok := os.LookupEnv("PS_HASH_" + op); ok && v != "" {
		return v, "env_generic"
	}
	normLocale := normalizeLocaleKey(locale)
	if v, ok := h.fileMap[normLocale+"::"+op]; ok {
		return v, "hashes_json_locale"
	}
	if v, ok := h.fileMap[op]; ok {
		return v, "hashes_json_op"
	}
	if v, ok := h.collectionMap[op]; ok {
		return v, "collection_export"
	}
	if op == "categoryGridRetrieve" && h.globalHash != "" {
		return h.globalHash, "env_legacy_global"
	}
	if h.legacySHA256 != "" {
		return h.legacySHA256, "env_legacy_sha256"
	}
	if v, ok := staticHashFallback[op]; ok {
		return v, "static_fallback"
	}
	return "", "none"
}
