// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rating coerces an upstream provider's arbitrary rating payload into
the catalog's canonical 0..5 float scale.

Resolution order:

 1. A per-provider alias registry picks a canonical field and scale.
 2. A generic alias list covers well-known field names across providers.
 3. A fuzzy depth-first walk scores every key that "looks like a rating" and
    keeps the highest-scoring candidate.

Every path funnels through [normalizeNumberToFive], which clamps to 0..5 and
rejects anything outside a plausible rating range.
*/
package rating

import (
	"strconv"
	"strings"
)

// Scale identifies the numeric range a provider's rating field is expressed in.
type Scale int

const (
	ZeroToFive Scale = iota
	ZeroToHundred
	StarString
)

// aliasMapping pairs a provider field name with the scale it is expressed in.
type aliasMapping struct {
	field string
	scale Scale
}

// fieldAliases are well-known rating field names scanned in priority order
// before falling back to the fuzzy walk.
var fieldAliases = []aliasMapping{
	{"user_ratings", ZeroToFive},
	{"aggregated_rating", ZeroToHundred},
	{"product_star_rating", StarString},
	{"rating", ZeroToFive},
	{"average_rating", ZeroToFive},
	{"averageRating", ZeroToFive},
	{"userRating", ZeroToFive},
	{"user_rating", ZeroToFive},
	{"metacritic", ZeroToHundred},
	{"metacritic_score", ZeroToHundred},
}

// providerOverrides lets a specific provider_key declare its own canonical
// rating field and scale, bypassing the generic alias scan entirely.
var providerOverrides = map[string]aliasMapping{
	"igdb":               {"aggregated_rating", ZeroToHundred},
	"playstation_store":  {"product_star_rating", StarString},
	"psstore":            {"product_star_rating", StarString},
}

// ExtractNormalizedRating returns a provider's rating coerced to the
// catalog's canonical 0..5 scale, trying (in order) a provider override, the
// generic alias list, then a fuzzy key-tokenization walk. Returns
// (0, false) when no rating could be extracted.
func ExtractNormalizedRating(providerKey string, payload map[string]any) (float64, bool) {
	if providerKey != "" {
		if override, ok := providerOverrides[providerKey]; ok {
			if v, found := findByKey(payload, override.field); found {
				if r, ok := normalizeValueToFive(override.scale, v); ok {
					return r, true
				}
			}
		}
	}

	for _, alias := range fieldAliases {
		v, found := findByKey(payload, alias.field)
		if !found {
			continue
		}
		if r, ok := normalizeValueToFive(alias.scale, v); ok {
			return r, true
		}
		if s, isString := v.(string); isString {
			tokens := keyTokens(alias.field)
			if r, ok := parseRatingString(s, tokens); ok {
				return r, true
			}
		}
	}

	type candidate struct {
		score int
		value float64
	}
	var best *candidate

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			for key, child := range val {
				tokens := keyTokens(key)
				if keyLooksLikeRating(tokens) {
					if r, ok := candidateFromValue(child, tokens); ok {
						score := ratingKeyScore(tokens)
						if best == nil || score > best.score {
							best = &candidate{score: score, value: r}
						}
					}
				}
				walk(child)
			}
		case []any:
			for _, child := range val {
				walk(child)
			}
		}
	}
	walk(payload)

	if best != nil {
		return best.value, true
	}
	return 0, false
}

// candidateFromValue extracts a 0..5 rating from a fuzzy-matched value,
// handling plain numbers/strings and nested {value,max}/{score,max} shapes.
func candidateFromValue(v any, tokens []string) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return normalizeNumberToFive(val, tokens)
	case string:
		return parseRatingString(val, tokens)
	case map[string]any:
		value, hasValue := firstPresent(val, "value", "rating", "score", "avg", "average")
		maxV, hasMax := firstPresent(val, "max", "out_of", "scale", "denominator")

		valNum, valOK := asFloat(value)
		if !hasValue || !valOK {
			return 0, false
		}

		if hasMax {
			if maxNum, ok := asFloat(maxV); ok && maxNum > 0 {
				return normalizeNumberToFive((valNum/maxNum)*5, tokens)
			}
		}
		return normalizeNumberToFive(valNum, tokens)
	}
	return 0, false
}

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// normalizeValueToFive coerces v (a JSON number or string) against scale.
func normalizeValueToFive(scale Scale, v any) (float64, bool) {
	var raw float64
	switch val := v.(type) {
	case float64:
		raw = val
	case string:
		if scale == StarString {
			r, ok := parseStarString(val)
			if !ok {
				return 0, false
			}
			raw = r
		} else {
			f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return 0, false
			}
			raw = f
		}
	default:
		return 0, false
	}

	if scale == ZeroToHundred {
		if raw < 0 || raw > 100 {
			return 0, false
		}
		raw = raw / 20
	}
	return normalizeNumberToFive(raw, nil)
}
