// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slugkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gamecatalog/internal/catalog/slugkit"
)

func TestSlug_Idempotent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Final Fantasy VII", "final-fantasy-vii"},
		{"accents", "Pokémon Déjà Vu", "pokemon-deja-vu"},
		{"punctuation", "Spider-Man: Miles Morales!!", "spider-man-miles-morales"},
		{"already_slug", "elden-ring", "elden-ring"},
		{"double_spaces", "Grand   Theft   Auto", "grand-theft-auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slugkit.Slug(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, slugkit.Slug(got), "slug must be idempotent")
		})
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	title := "The Legend of Zelda: Tears of the Kingdom"
	once := slugkit.NormalizeTitle(title)
	twice := slugkit.NormalizeTitle(once)
	assert.Equal(t, once, twice)
}

func TestSourceSlug(t *testing.T) {
	a := slugkit.SourceSlug("IGDB", "igdb.com")
	b := slugkit.SourceSlug("IGDB", "igdb-alt.com")

	assert.NotEqual(t, a, b, "different fallbacks must disambiguate identical primaries")
	assert.Equal(t, a, slugkit.SourceSlug("IGDB", "igdb.com"), "deterministic for identical inputs")

	empty := slugkit.SourceSlug("", "")
	assert.Contains(t, empty, "video-game-source")
}

func TestClampProviderKey(t *testing.T) {
	assert.Equal(t, "abc", slugkit.ClampProviderKey("abc", 64))
	long := make([]rune, 100)
	for i := range long {
		long[i] = 'x'
	}
	clamped := slugkit.ClampProviderKey(string(long), 64)
	assert.Len(t, []rune(clamped), 64)
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"halo": true, "halo-2": true}
	got := slugkit.UniqueSlug("halo", func(s string) bool { return taken[s] })
	assert.Equal(t, "halo-3", got)

	assert.Equal(t, "portal", slugkit.UniqueSlug("portal", func(string) bool { return false }))
}

func TestISO2ToISO3(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"US", "USA"},
		{"us", "USA"},
		{"ZH", "CHN"}, // intentional language-code alias
		{"JP", "JPN"},
		{"??", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, slugkit.ISO2ToISO3(tt.code))
		})
	}
}

func TestCanonicalizeRetailer(t *testing.T) {
	name1, slug1 := slugkit.CanonicalizeRetailer("PSN", nil)
	name2, slug2 := slugkit.CanonicalizeRetailer("playstation-store", nil)

	assert.Equal(t, "PlayStation Store", name1)
	assert.Equal(t, "psstore", slug1)
	assert.Equal(t, name1, name2)
	assert.Equal(t, slug1, slug2)
}

func TestCanonicalizePlatform_Synonyms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ps4", "PS4"},
		{"playstation 4", "PS4"},
		{"playstation-4", "PS4"},
		{"ps5", "PS5"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, matched := slugkit.CanonicalizePlatform(tt.input, nil)
			assert.True(t, matched)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizePlatform_NumericGenerationGuard(t *testing.T) {
	existing := []string{"PlayStation 4"}
	got, matched := slugkit.CanonicalizePlatform("PlayStation 3", existing)

	assert.False(t, matched, "distinct generation numbers must never collapse")
	assert.Equal(t, "PlayStation 3", got)
}

func TestCanonicalizePlatform_FuzzyMatch(t *testing.T) {
	existing := []string{"Nintendo Switch"}
	got, matched := slugkit.CanonicalizePlatform("Nintendo Swich", existing)

	assert.True(t, matched)
	assert.Equal(t, "Nintendo Switch", got)
}

func TestEditionHint_FromTitle(t *testing.T) {
	has, label := slugkit.EditionHint("Cyberpunk 2077: Ultimate Edition", nil)
	assert.True(t, has)
	assert.Equal(t, "Ultimate", *label)
}

func TestEditionHint_FromMetadataLeaf(t *testing.T) {
	meta := map[string]any{
		"packaging": map[string]any{
			"box_text": "Collector's Edition contents inside",
		},
	}
	has, label := slugkit.EditionHint("Halo Infinite", meta)
	assert.True(t, has)
	assert.Equal(t, "Collector's", *label)
}

func TestEditionHint_None(t *testing.T) {
	has, label := slugkit.EditionHint("Tetris", map[string]any{"notes": "classic puzzle game"})
	assert.False(t, has)
	assert.Nil(t, label)
}
