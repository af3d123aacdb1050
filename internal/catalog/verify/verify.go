// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package verify implements the post-run Verifier: after every write stage of
the Legacy Snapshot Driver or the API Driver completes, it checks the two
global linkage invariants and reports coverage of the rows just written.

Violations of a fatal invariant are returned in the Report with Fatal set
(Run itself does not return an error for them; the caller fails the run on
[Report.HasFatal]) unless the corresponding
internal/platform/config.StrictnessConfig override is set, in which case the
same condition is downgraded to a non-fatal entry or not reported.
*/
package verify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gamecatalog/internal/catalog/schema"
	"github.com/taibuivan/gamecatalog/internal/platform/config"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// Verifier runs invariant and coverage checks against the target schema.
type Verifier struct {
	pool   *pgxpool.Pool
	shape  *schema.Shape
	cache  *schema.Cache
	strict config.StrictnessConfig
}

// New constructs a Verifier.
func New(pool *pgxpool.Pool, cache *schema.Cache, shape *schema.Shape, strict config.StrictnessConfig) *Verifier {
	return &Verifier{pool: pool, shape: shape, cache: cache, strict: strict}
}

// Violation is one failed invariant check. Fatal is false when the matching
// strictness override downgraded it to a warning.
type Violation struct {
	Invariant string
	Detail    string
	Count     int64
	Fatal     bool
}

// Coverage is one informational, never-fatal measurement.
type Coverage struct {
	Metric string
	Detail string
	Count  int64
}

// Report is the full result of a verification pass.
type Report struct {
	Violations []Violation
	Coverage   []Coverage
}

// HasFatal reports whether any violation in the report is still fatal after
// strictness overrides have been applied.
func (r Report) HasFatal() bool {
	for _, v := range r.Violations {
		if v.Fatal {
			return true
		}
	}
	return false
}

// Run executes every check and returns the combined report. It returns an
// error only when a check itself cannot be executed (e.g. a query fails);
// a clean report with fatal violations is returned without error so the
// caller can log the full detail before deciding to fail the run.
func (v *Verifier) Run(ctx context.Context) (Report, error) {
	var report Report

	titleLinkage, err := v.checkTitleLinkage(ctx)
	if err != nil {
		return report, fmt.Errorf("verify: title linkage: %w", err)
	}
	if titleLinkage != nil {
		report.Violations = append(report.Violations, *titleLinkage)
	}

	jurisdictionCompat, err := v.checkJurisdictionCompat(ctx)
	if err != nil {
		return report, fmt.Errorf("verify: jurisdiction compat: %w", err)
	}
	if jurisdictionCompat != nil {
		report.Violations = append(report.Violations, *jurisdictionCompat)
	}

	priceCoverage, err := v.coveragePriceCurrency(ctx)
	if err != nil {
		return report, fmt.Errorf("verify: price currency coverage: %w", err)
	}
	if priceCoverage != nil {
		report.Coverage = append(report.Coverage, *priceCoverage)
	}

	mediaCoverage, err := v.coverageVideoGameMedia(ctx)
	if err != nil {
		return report, fmt.Errorf("verify: video game media coverage: %w", err)
	}
	if mediaCoverage != nil {
		report.Coverage = append(report.Coverage, *mediaCoverage)
	}

	return report, nil
}

// checkTitleLinkage enforces I2: every video_game_titles row that carries
// source identity (video_game_source_id, vg_source_item_id) must resolve to
// an actual video_game. Absent on schemas without video_game_titles (legacy
// titles live inline on video_games) or without those two columns.
func (v *Verifier) checkTitleLinkage(ctx context.Context) (*Violation, error) {
	if !v.shape.HasVideoGameTitles {
		return nil, nil
	}
	t := dbschema.VideoGameTitleTable
	hasSourceCols, err := v.cache.HasColumn(ctx, t.Table, t.VideoGameSourceID)
	if err != nil {
		return nil, err
	}
	if hasSourceCols {
		hasSourceCols, err = v.cache.HasColumn(ctx, t.Table, t.VgSourceItemID)
		if err != nil {
			return nil, err
		}
	}
	if !hasSourceCols {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s IS NOT NULL AND %s IS NULL`,
		t.Table, t.VideoGameSourceID, t.VgSourceItemID, t.VideoGameID,
	)
	var count int64
	if err := v.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	return &Violation{
		Invariant: "I2_title_linkage",
		Detail:    "video_game_titles rows carrying provider-item identity but no resolved video_game",
		Count:     count,
		Fatal:     !v.strict.AllowUnlinkedSourceItems,
	}, nil
}

// checkJurisdictionCompat enforces that the legacy country-id-as-
// jurisdiction-id compatibility path (offer_jurisdictions.jurisdiction_id
// holding a countries.id directly, on schemas with no jurisdictions table)
// is only exercised when explicitly permitted.
func (v *Verifier) checkJurisdictionCompat(ctx context.Context) (*Violation, error) {
	if v.shape.HasJurisdictions || v.strict.AllowCountryOnlyJurisdictions {
		return nil, nil
	}
	oj := dbschema.OfferJurisdictionTable
	hasTable, err := v.cache.HasTable(ctx, oj.Table)
	if err != nil {
		return nil, err
	}
	if !hasTable {
		return nil, nil
	}

	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, oj.Table)
	if err := v.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	return &Violation{
		Invariant: "country_only_jurisdiction_compat",
		Detail:    "offer_jurisdictions rows present on a schema with no jurisdictions table, without the compat override set",
		Count:     count,
		Fatal:     true,
	}, nil
}

// coveragePriceCurrency reports how many region_prices rows join to an
// offer_jurisdiction with no resolvable currency. I1 is enforced at ingest
// time in internal/pricing (such rows are skipped with a warning, never
// written), so a non-zero count here would indicate a write path that
// bypassed that guard rather than a live violation — informational only.
func (v *Verifier) coveragePriceCurrency(ctx context.Context) (*Coverage, error) {
	rp := dbschema.RegionPriceTable
	oj := dbschema.OfferJurisdictionTable
	hasTable, err := v.cache.HasTable(ctx, rp.Table)
	if err != nil {
		return nil, err
	}
	if !hasTable {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s rp
		 JOIN %s oj ON oj.%s = rp.%s
		 WHERE oj.%s IS NULL`,
		rp.Table, oj.Table, oj.ID, rp.OfferJurisdictionID, oj.CurrencyID,
	)
	var count int64
	if err := v.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return nil, err
	}
	return &Coverage{
		Metric: "region_prices_missing_currency",
		Detail: "region_prices rows whose offer_jurisdiction has no currency_id (should be zero; I1 is enforced at ingest)",
		Count:  count,
	}, nil
}

// coverageVideoGameMedia reports how many video_games rows have no game_media
// row at all, for operator visibility into import completeness.
func (v *Verifier) coverageVideoGameMedia(ctx context.Context) (*Coverage, error) {
	vg := dbschema.VideoGameTable
	gm := dbschema.GameMediaTable

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s vg
		 WHERE NOT EXISTS (SELECT 1 FROM %s gm WHERE gm.%s = vg.%s)`,
		vg.Table, gm.Table, gm.VideoGameID, vg.ID,
	)
	var count int64
	if err := v.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return nil, err
	}
	return &Coverage{
		Metric: "video_games_without_media",
		Detail: "video_games rows with no linked game_media row",
		Count:  count,
	}, nil
}
