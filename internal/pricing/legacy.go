// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// ingestLegacy is the Pricing Ingestor's write path for a Laravel-era
// schema, where sku_regions collapses what the modern schema splits across
// offer_jurisdictions/region_prices into a single row. r.OfferJurisdictionID
// is interpreted as a sku_regions.id; there is no separate history table to
// append to, so the row's current price fields are updated in place.
func (ig *Ingestor) ingestLegacy(ctx context.Context, rows []model.PriceRow) (Result, error) {
	contexts, err := ig.resolveSkuRegionContexts(ctx, rows)
	if err != nil {
		return Result{}, err
	}

	batch := &pgx.Batch{}
	var queued []model.PriceRow
	touched := map[int64]struct{}{}
	var currentUpdates []CurrentPriceRow

	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4`,
		dbschema.SkuRegionTable.Table,
		dbschema.SkuRegionTable.AmountMinor, dbschema.SkuRegionTable.RecordedAt, dbschema.SkuRegionTable.TaxInclusive,
		dbschema.SkuRegionTable.ID,
	)

	for _, r := range rows {
		if _, ok := contexts[r.OfferJurisdictionID]; !ok {
			continue
		}
		batch.Queue(query, r.AmountMinor, r.RecordedAt, r.TaxInclusive, r.OfferJurisdictionID)
		queued = append(queued, r)
		touched[r.OfferJurisdictionID] = struct{}{}
		currentUpdates = append(currentUpdates, CurrentPriceRow{
			OfferJurisdictionID: r.OfferJurisdictionID,
			AmountMinor:         r.AmountMinor,
			RecordedAt:          r.RecordedAt,
			Agent:               defaultAgent,
			AgentPriority:       defaultPriority,
		})
	}

	if len(queued) == 0 {
		return Result{}, nil
	}

	result := ig.pool.SendBatch(ctx, batch)
	defer result.Close()
	for range queued {
		if _, err := result.Exec(); err != nil {
			return Result{}, fmt.Errorf("pricing: legacy sku_regions update: %w", err)
		}
	}

	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	return Result{OfferJurisdictionIDs: ids, CurrentUpdates: currentUpdates}, nil
}

// resolveSkuRegionContexts resolves each sku_regions.id in rows to its
// currency context via sku_regions.currency (a bare ISO code, no FK).
func (ig *Ingestor) resolveSkuRegionContexts(ctx context.Context, rows []model.PriceRow) (map[int64]currencyContext, error) {
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
		`SELECT s.%s, c.%s, NULL::bigint, c.%s, %s
		 FROM %s s
		 JOIN %s c ON upper(c.%s) = upper(s.%s)
		 WHERE s.%s = ANY($1)`,
		dbschema.SkuRegionTable.ID, dbschema.CurrencyTable.ID, dbschema.CurrencyTable.Code, minorUnitExpr,
		dbschema.SkuRegionTable.Table,
		dbschema.CurrencyTable.Table, dbschema.CurrencyTable.Code, dbschema.SkuRegionTable.Currency,
		dbschema.SkuRegionTable.ID,
	)

	return ig.scanCurrencyContexts(ctx, query, ids)
}
