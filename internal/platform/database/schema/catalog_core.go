// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema centralizes column-name constants for every catalog table,
// so the Upsert Engine and Schema Introspector never hand-type a column
// name twice. Each table gets a `XxxTable` struct of column-name strings
// plus a package-level instance, mirroring the teacher's
// internal/platform/database/schema/core_comic.go pattern.
//
// Tables carry both their "modern" unified-schema column names and, where
// the shape diverges, the legacy PHP/Laravel equivalents — see the
// `Legacy*` fields. The Introspector decides at runtime which set applies.
package schema

// ProviderTableT names the columns of the `providers` table.
type ProviderTableT struct {
	Table string
	ID    string
	Slug  string
	Name  string
	Kind  string
}

var ProviderTable = ProviderTableT{
	Table: "providers",
	ID:    "id",
	Slug:  "slug",
	Name:  "name",
	Kind:  "kind",
}

func (t ProviderTableT) Columns() []string { return []string{t.ID, t.Slug, t.Name, t.Kind} }

// LegacySourceTableT names the columns of the legacy `video_game_sources` table.
type LegacySourceTableT struct {
	Table       string
	ID          string
	DisplayName string
	Kind        string
}

var LegacySourceTable = LegacySourceTableT{
	Table:       "video_game_sources",
	ID:          "id",
	DisplayName: "display_name",
	Kind:        "kind",
}

// PlatformTableT names the columns of the `platforms` table.
type PlatformTableT struct {
	Table  string
	ID     string
	Name   string
	Code   string
	Family string
}

var PlatformTable = PlatformTableT{
	Table:  "platforms",
	ID:     "id",
	Name:   "name",
	Code:   "code",
	Family: "family",
}

func (t PlatformTableT) Columns() []string { return []string{t.ID, t.Name, t.Code, t.Family} }

// CurrencyTableT names the columns of the `currencies` table.
type CurrencyTableT struct {
	Table     string
	ID        string
	Code      string
	Name      string
	MinorUnit string
	// LegacyMinorUnit is the alternate column name ("decimals") seen on
	// Laravel-style deployments.
	LegacyMinorUnit string
}

var CurrencyTable = CurrencyTableT{
	Table:           "currencies",
	ID:              "id",
	Code:            "code",
	Name:            "name",
	MinorUnit:       "minor_unit",
	LegacyMinorUnit: "decimals",
}

func (t CurrencyTableT) Columns() []string { return []string{t.ID, t.Code, t.Name, t.MinorUnit} }

// CountryTableT names the columns of the `countries` table.
type CountryTableT struct {
	Table      string
	ID         string
	ISO2       string
	ISO3       string
	Name       string
	CurrencyID string
	// LegacyCode2/LegacyCode are alternate column names seen across
	// deployments ("country_code", "code2", "code").
	LegacyCode2 string
	LegacyCode  string
}

var CountryTable = CountryTableT{
	Table:       "countries",
	ID:          "id",
	ISO2:        "iso2",
	ISO3:        "iso3",
	Name:        "name",
	CurrencyID:  "currency_id",
	LegacyCode2: "code2",
	LegacyCode:  "code",
}

func (t CountryTableT) Columns() []string {
	return []string{t.ID, t.ISO2, t.ISO3, t.Name, t.CurrencyID}
}

// JurisdictionTableT names the columns of the `jurisdictions` table, absent
// entirely on legacy deployments.
type JurisdictionTableT struct {
	Table      string
	ID         string
	CountryID  string
	RegionCode string
}

var JurisdictionTable = JurisdictionTableT{
	Table:      "jurisdictions",
	ID:         "id",
	CountryID:  "country_id",
	RegionCode: "region_code",
}

func (t JurisdictionTableT) Columns() []string {
	return []string{t.ID, t.CountryID, t.RegionCode}
}
