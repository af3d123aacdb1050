// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slugkit

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// platformMinSimilarity is the Jaro-Winkler floor below which two platform
// names are treated as genuinely distinct.
const platformMinSimilarity = 0.80

var jaroWinkler = metrics.NewJaroWinkler()

// platformSynonyms maps a normalized input form straight to its canonical
// display name, bypassing fuzzy matching entirely for the common cases.
var platformSynonyms = map[string]string{
	"ps4":            "PS4",
	"playstation4":   "PS4",
	"playstation-4":  "PS4",
	"playstation 4":  "PS4",
	"ps5":            "PS5",
	"playstation5":   "PS5",
	"playstation-5":  "PS5",
	"playstation 5":  "PS5",
	"xboxone":        "Xbox One",
	"xbox-one":       "Xbox One",
	"xbox one":       "Xbox One",
	"xboxseriesx":    "Xbox Series X",
	"xbox-series-x":  "Xbox Series X",
	"xbox series x":  "Xbox Series X",
	"xboxseriess":    "Xbox Series S",
	"xbox-series-s":  "Xbox Series S",
	"xbox series s":  "Xbox Series S",
	"switch":         "Nintendo Switch",
	"nintendoswitch": "Nintendo Switch",
	"pc":             "PC",
	"windows":        "PC",
}

// digitRun extracts a run of digits, used to guard against collapsing
// distinct hardware generations ("3" vs "4") that are otherwise textually
// similar ("PlayStation 3" vs "PlayStation 4").
var digitRun = regexp.MustCompile(`[0-9]+`)

// CanonicalizePlatform maps name to a canonical platform display name.
// Synonyms are resolved directly; anything else is matched against existing
// by Jaro-Winkler similarity (>= 0.80), rejecting candidates whose digit runs
// differ from name's — generation numbers must match exactly, however close
// the surrounding text is.
func CanonicalizePlatform(name string, existing []string) (canonical string, matched bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(name)), " "))
	key := strings.ReplaceAll(normalized, " ", "")
	key = strings.ReplaceAll(key, "-", "")
	if canon, ok := platformSynonyms[normalized]; ok {
		return canon, true
	}
	if canon, ok := platformSynonyms[key]; ok {
		return canon, true
	}

	nameDigits := digitRun.FindString(name)

	var bestName string
	var bestScore float64
	for _, candidate := range existing {
		if digitRun.FindString(candidate) != nameDigits {
			continue
		}
		score := strutil.Similarity(normalized, strings.ToLower(candidate), jaroWinkler)
		if score > bestScore {
			bestScore = score
			bestName = candidate
		}
	}

	if bestScore >= platformMinSimilarity {
		return bestName, true
	}
	return strings.TrimSpace(name), false
}

// retailerSynonyms collapses storefront aliases to one (display name, slug)
// identity before lookup, so "PSN" and "playstation-store" resolve to the
// same Retailer row.
var retailerSynonyms = map[string]struct {
	name string
	slug string
}{
	"psn":                 {"PlayStation Store", "psstore"},
	"playstation":         {"PlayStation Store", "psstore"},
	"playstation-store":   {"PlayStation Store", "psstore"},
	"playstation store":   {"PlayStation Store", "psstore"},
	"ps-store":            {"PlayStation Store", "psstore"},
	"xbox-store":          {"Xbox Store", "xboxstore"},
	"microsoft-store":     {"Xbox Store", "xboxstore"},
	"nintendo-eshop":      {"Nintendo eShop", "eshop"},
	"eshop":               {"Nintendo eShop", "eshop"},
	"steam":               {"Steam", "steam"},
	"steampowered":        {"Steam", "steam"},
	"epic-games-store":    {"Epic Games Store", "epic"},
	"epic":                {"Epic Games Store", "epic"},
	"gog":                 {"GOG", "gog"},
	"humble-store":        {"Humble Store", "humble"},
}

// CanonicalizeRetailer resolves name (and an optional pre-known slug) to a
// canonical (displayName, slug) pair, collapsing known storefront aliases
// before falling back to deriving a slug from the raw name.
func CanonicalizeRetailer(name string, slug *string) (string, string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := retailerSynonyms[key]; ok {
		return canon.name, canon.slug
	}
	if slug != nil {
		if canon, ok := retailerSynonyms[strings.ToLower(*slug)]; ok {
			return canon.name, canon.slug
		}
	}

	derivedSlug := Slug(name)
	if slug != nil && *slug != "" {
		derivedSlug = Slug(*slug)
	}
	return strings.TrimSpace(name), derivedSlug
}
