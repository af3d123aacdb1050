// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
	"github.com/taibuivan/gamecatalog/pkg/slice"
)

// resolveCurrencyContexts maps every distinct offer_jurisdiction_id in rows
// to its currency/country context, joining through currencies and (when
// present) jurisdictions→countries. Ids with no matching offer_jurisdictions
// row go through the jurisdictions/sku_regions second pass below; ids that
// neither pass resolves are absent from the result, so the caller skips them.
func (ig *Ingestor) resolveCurrencyContexts(ctx context.Context, rows []model.PriceRow) (map[int64]currencyContext, error) {
	ids := make([]int64, 0, len(rows))
	seen := map[int64]struct{}{}
	for _, r := range rows {
		if _, ok := seen[r.OfferJurisdictionID]; ok {
			continue
		}
		seen[r.OfferJurisdictionID] = struct{}{}
		ids = append(ids, r.OfferJurisdictionID)
	}

	minorUnitExpr, err := ig.minorUnitExpression(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT oj.%s, oj.%s, j.%s, c.%s, %s
		 FROM %s oj
		 JOIN %s c ON c.%s = oj.%s
		 LEFT JOIN %s j ON j.%s = oj.%s
		 WHERE oj.%s = ANY($1)`,
		dbschema.OfferJurisdictionTable.ID, dbschema.OfferJurisdictionTable.CurrencyID,
		dbschema.JurisdictionTable.CountryID, dbschema.CurrencyTable.Code, minorUnitExpr,
		dbschema.OfferJurisdictionTable.Table,
		dbschema.CurrencyTable.Table, dbschema.CurrencyTable.ID, dbschema.OfferJurisdictionTable.CurrencyID,
		dbschema.JurisdictionTable.Table, dbschema.JurisdictionTable.ID, dbschema.OfferJurisdictionTable.JurisdictionID,
		dbschema.OfferJurisdictionTable.ID,
	)

	contexts, err := ig.scanCurrencyContexts(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	// Second pass (spec step 2): any id not resolved as an offer_jurisdiction
	// is retried as a jurisdictions.id, mapped via region_code to the
	// matching sku_regions row's currency column.
	unresolved := slice.Filter(ids, func(id int64) bool {
		_, ok := contexts[id]
		return !ok
	})
	if len(unresolved) == 0 || !ig.shape.HasSkuRegions || !ig.shape.HasJurisdictions {
		return contexts, nil
	}

	fallbackQuery := fmt.Sprintf(
		`SELECT j.%s, c.%s, j.%s, c.%s, %s
		 FROM %s j
		 JOIN %s s ON s.%s = j.%s
		 JOIN %s c ON upper(c.%s) = upper(s.%s)
		 WHERE j.%s = ANY($1)`,
		dbschema.JurisdictionTable.ID, dbschema.CurrencyTable.ID,
		dbschema.JurisdictionTable.CountryID, dbschema.CurrencyTable.Code, minorUnitExpr,
		dbschema.JurisdictionTable.Table,
		dbschema.SkuRegionTable.Table, dbschema.SkuRegionTable.RegionCode, dbschema.JurisdictionTable.RegionCode,
		dbschema.CurrencyTable.Table, dbschema.CurrencyTable.Code, dbschema.SkuRegionTable.Currency,
		dbschema.JurisdictionTable.ID,
	)

	fallback, err := ig.scanCurrencyContexts(ctx, fallbackQuery, unresolved)
	if err != nil {
		return nil, err
	}
	for id, cc := range fallback {
		contexts[id] = cc
	}

	return contexts, nil
}

func (ig *Ingestor) scanCurrencyContexts(ctx context.Context, query string, ids []int64) (map[int64]currencyContext, error) {
	result, err := ig.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("pricing: resolve currency contexts: %w", err)
	}
	defer result.Close()

	contexts := make(map[int64]currencyContext, len(ids))
	for result.Next() {
		var (
			id         int64
			currencyID int64
			countryID  *int64
			code       string
			minorUnit  int
		)
		if err := result.Scan(&id, &currencyID, &countryID, &code, &minorUnit); err != nil {
			return nil, fmt.Errorf("pricing: scan currency context: %w", err)
		}
		contexts[id] = currencyContext{
			currencyID:   currencyID,
			countryID:    countryID,
			minorUnit:    minorUnit,
			currencyCode: code,
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("pricing: iterate currency contexts: %w", err)
	}

	return contexts, nil
}

// minorUnitExpression returns a SQL expression resolving the currencies
// table's minor-unit column under either its modern (minor_unit) or
// Laravel-era (decimals) name, defaulting to 2 when neither is populated.
func (ig *Ingestor) minorUnitExpression(ctx context.Context) (string, error) {
	hasDecimals, err := ig.cache.HasColumn(ctx, dbschema.CurrencyTable.Table, dbschema.CurrencyTable.LegacyMinorUnit)
	if err != nil {
		return "", fmt.Errorf("pricing: detect minor-unit column: %w", err)
	}
	if hasDecimals {
		return fmt.Sprintf("COALESCE(c.%s, c.%s, 2)", dbschema.CurrencyTable.MinorUnit, dbschema.CurrencyTable.LegacyMinorUnit), nil
	}
	return fmt.Sprintf("COALESCE(c.%s, 2)", dbschema.CurrencyTable.MinorUnit), nil
}

// encodeMeta best-effort serializes meta as the region_prices.raw_payload
// JSON column; a nil/empty map yields an empty JSON object rather than NULL,
// matching the column's NOT NULL constraint.
func encodeMeta(meta map[string]any) []byte {
	if len(meta) == 0 {
		return []byte("{}")
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return []byte("{}")
	}
	return encoded
}

func insertQuery() string {
	t := dbschema.RegionPriceTable
	return fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT DO NOTHING`,
		t.Table,
		t.OfferJurisdictionID, t.RecordedAt, t.AmountMinor, t.FiatAmount, t.LocalAmount,
		t.BTCValue, t.TaxInclusive, t.FXRateSnapshot, t.BTCRateSnapshot, t.RawPayload,
	)
}
