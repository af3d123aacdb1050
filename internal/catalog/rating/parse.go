// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"strconv"
	"strings"
	"unicode"
)

// clamp bounds r to the catalog's 0..5 rating range.
func clamp(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// normalizeNumberToFive coerces raw onto the 0..5 scale by guessing its
// source scale from its magnitude: 0..5 passes through, (5,10] is halved,
// (10,100] is divided by 20. Values outside [-10000,10000] or keys that
// scream "metacritic"/"score" over a (10,100] value are handled per the
// documented scale-preference rule.
func normalizeNumberToFive(raw float64, tokens []string) (float64, bool) {
	if raw != raw || raw > 10000 || raw < -10000 {
		return 0, false
	}

	var r float64
	switch {
	case raw >= 0 && raw <= 5:
		r = raw
	case raw > 5 && raw <= 10:
		r = raw / 2
	case raw > 10 && raw <= 100:
		r = raw / 20
	default:
		return 0, false
	}

	if raw > 10 && raw <= 100 && tokensContainAny(tokens, "metacritic", "score", "scores") {
		r = raw / 20
	}

	return clamp(r), true
}

// parseRatingString extracts a 0..5 rating from a free-form string: percent
// ("80%"), fraction ("4/5"), "x out of y", star text ("4.5 stars"), or a
// leading-numeric fallback.
func parseRatingString(s string, tokens []string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}

	if idx := strings.Index(s, "%"); idx >= 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64); err == nil {
			return normalizeNumberToFive(v, []string{"score"})
		}
	}

	if lhs, rhs, ok := strings.Cut(s, "/"); ok {
		rhs = trimStarSuffix(rhs)
		num, numErr := strconv.ParseFloat(strings.TrimSpace(lhs), 64)
		den, denErr := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
		if numErr == nil && denErr == nil && den > 0 {
			return normalizeNumberToFive((num/den)*5, tokens)
		}
	}

	if strings.Contains(s, "out of") {
		parts := strings.SplitN(s, "out of", 2)
		if len(parts) == 2 {
			lhs := strings.TrimSpace(parts[0])
			rhs := trimStarSuffix(parts[1])
			num, numErr := strconv.ParseFloat(lhs, 64)
			den, denErr := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
			if numErr == nil && denErr == nil && den > 0 {
				return normalizeNumberToFive((num/den)*5, tokens)
			}
		}
	}

	if strings.Contains(s, "star") {
		if v, ok := parseStarString(s); ok {
			return normalizeNumberToFive(v, tokens)
		}
	}

	if v, ok := leadingNumber(s); ok {
		return normalizeNumberToFive(v, tokens)
	}
	return 0, false
}

func trimStarSuffix(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "stars")
	s = strings.TrimSuffix(s, "star")
	return strings.TrimSpace(s)
}

// parseStarString parses forms like "4", "4.5", "4.5 stars", preferring the
// leading number once "star(s)" text is stripped.
func parseStarString(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "stars", "")
	s = strings.TrimSpace(strings.ReplaceAll(s, "star", ""))
	if s == "" {
		return 0, false
	}
	return leadingNumber(s)
}

// leadingNumber parses the longest numeric prefix (digits and at most one
// decimal point) of s.
func leadingNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		} else if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// keyTokens splits a camelCase/snake_case/kebab-case key into lowercase
// tokens, so "averageRating", "average_rating", and "average-rating" all
// tokenize to ["average", "rating"].
func keyTokens(key string) []string {
	var tokens []string
	var cur strings.Builder
	prevLower := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if unicode.IsUpper(r) && prevLower {
				flush()
			}
			cur.WriteRune(r)
			prevLower = unicode.IsLower(r)
		} else {
			flush()
			prevLower = false
		}
	}
	flush()
	return tokens
}

// keyLooksLikeRating reports whether tokens identify a rating-bearing key.
// Tokenization (not substring match) is what keeps "operating" from being
// mistaken for "rating": it tokenizes to a single token, ["operating"].
//
// Open question resolved: a bare "score" token alone is NOT sufficient —
// it must be paired with "meta"/"critic"/"metacritic" to qualify, so an
// unrelated "score" field (e.g. a game's high score) never gets treated as
// a rating.
func keyLooksLikeRating(tokens []string) bool {
	hasRating := tokensContainAny(tokens, "rating", "ratings")
	hasStars := tokensContainAny(tokens, "star", "stars")
	hasMetacritic := tokensContainSubstr(tokens, "metacritic")
	hasScore := tokensContainAny(tokens, "score", "scores")
	scoreQualified := tokensContainAny(tokens, "meta", "critic") || hasMetacritic

	return hasRating || hasStars || hasMetacritic || (hasScore && scoreQualified)
}

// ratingKeyScore ranks a rating-like key by specificity, used to break ties
// when the fuzzy walk finds more than one candidate: metacritic outranks
// average, which outranks rating, which outranks star, which outranks score.
func ratingKeyScore(tokens []string) int {
	score := 0
	if tokensContainSubstr(tokens, "metacritic") {
		score += 6
	}
	if tokensContainAny(tokens, "average", "avg") {
		score += 4
	}
	if tokensContainAny(tokens, "rating", "ratings") {
		score += 3
	}
	if tokensContainAny(tokens, "star", "stars") {
		score += 2
	}
	if tokensContainAny(tokens, "score", "scores") {
		score += 1
	}
	return score
}

func tokensContainAny(tokens []string, wanted ...string) bool {
	for _, t := range tokens {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

func tokensContainSubstr(tokens []string, substr string) bool {
	for _, t := range tokens {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// findByKey looks up field by exact or normalized-key match anywhere in the
// payload tree, searching depth-first: the current object's own keys first,
// then recursing into its children.
func findByKey(payload map[string]any, field string) (any, bool) {
	wantNorm := normalizeKeyForMatch(field)

	for k, v := range payload {
		if strings.EqualFold(k, field) || normalizeKeyForMatch(k) == wantNorm {
			return v, true
		}
	}
	for _, v := range payload {
		if child, ok := v.(map[string]any); ok {
			if found, ok := findByKey(child, field); ok {
				return found, true
			}
		}
		if arr, ok := v.([]any); ok {
			for _, item := range arr {
				if child, ok := item.(map[string]any); ok {
					if found, ok := findByKey(child, field); ok {
						return found, true
					}
				}
			}
		}
	}
	return nil, false
}

// normalizeKeyForMatch lowercases and strips non-alphanumerics, so
// "averageRating", "average_rating", and "average-rating" all compare equal.
func normalizeKeyForMatch(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
