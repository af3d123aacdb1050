// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slugkit normalizes the free-form strings the ingestion pipeline
receives from upstream providers — titles, slugs, platform names, retailer
names, ISO country codes — into the canonical forms the catalog graph keys
on.

Core Responsibilities:

  - ASCII folding: [Slug] and [NormalizeTitle] strip accents via NFD
    decomposition and collapse non-alphanumeric runs to a single hyphen,
    the same transformation pkg/slug applies to comic titles, generalized
    here to game titles and provider slugs.
  - Disambiguation: [SourceSlug] appends a short SHA-1 fragment so two
    providers with an identical display name never collide on the same
    source slug.
  - Fuzzy matching: [CanonicalizePlatform] recognizes common synonyms outright
    and falls back to Jaro-Winkler similarity for the rest, guarded against
    collapsing distinct hardware generations into one another.
*/
package slugkit

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSourceSlugLen is the column width source_slug-style identifiers clamp to.
const maxSourceSlugLen = 255

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen     = regexp.MustCompile(`-{2,}`)
)

// Slug converts an arbitrary Unicode string into a URL-safe ASCII slug:
// NFD-normalize, strip combining marks, lowercase, collapse non-alphanumeric
// runs to one hyphen, trim edge hyphens.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	folded, _, _ := transform.String(t, s)

	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, folded)

	folded = nonAlphanumeric.ReplaceAllString(folded, "-")
	folded = multiHyphen.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// NormalizeTitle applies the identical lowercase/fold/collapse pipeline as
// [Slug]. Titles and slugs share one normalized form in this catalog: both
// exist only to key lookups, never to render back to a user verbatim.
func NormalizeTitle(s string) string {
	return Slug(s)
}

// SourceSlug derives a stable per-source slug from a primary name and a
// fallback, disambiguated with an 8-hex SHA-1 fragment of "primary|fallback"
// so two providers sharing a display name never collide.
func SourceSlug(primary, fallback string) string {
	base := Slug(primary)
	if base == "" {
		base = Slug(fallback)
	}
	if base == "" {
		base = "video-game-source"
	}

	sum := sha1.Sum([]byte(primary + "|" + fallback))
	checksum := hex.EncodeToString(sum[:])[:8]

	suffix := "-" + checksum
	if len(base)+len(suffix) > maxSourceSlugLen {
		base = base[:maxSourceSlugLen-len(suffix)]
	}
	return base + suffix
}

// ClampProviderKey truncates s to at most maxChars runes. Truncation is
// rune-aware rather than full grapheme-cluster-aware: a provider key split
// mid-grapheme-cluster (e.g. between a base rune and a combining mark) is an
// accepted simplification, since provider keys are opaque identifiers never
// rendered back to a user.
func ClampProviderKey(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

// UniqueSlug returns base if taken(base) is false, otherwise appends "-2",
// "-3", ... until an untaken variant is found.
func UniqueSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
