// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// EnsureOffer resolves or creates an Offer for (sellableID, retailerID, sku).
func (e *Engine) EnsureOffer(ctx context.Context, sellableID, retailerID int64, sku string) (int64, error) {
	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
			dbschema.OfferTable.ID, dbschema.OfferTable.Table,
			dbschema.OfferTable.SellableID, dbschema.OfferTable.RetailerID, dbschema.OfferTable.SKU),
		sellableID, retailerID, sku,
	).Scan(&id)
	if lookupErr == nil {
		return id, nil
	}
	if lookupErr != pgx.ErrNoRows {
		return 0, lookupErr
	}

	return e.withPKRescue(ctx, dbschema.OfferTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		err := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s, %s, %s) DO UPDATE SET %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.OfferTable.Table, dbschema.OfferTable.SellableID, dbschema.OfferTable.RetailerID, dbschema.OfferTable.SKU,
				dbschema.OfferTable.SellableID, dbschema.OfferTable.RetailerID, dbschema.OfferTable.SKU,
				dbschema.OfferTable.SKU, dbschema.OfferTable.SKU,
				dbschema.OfferTable.ID,
			),
			sellableID, retailerID, sku,
		).Scan(&insertedID)
		return insertedID, err
	})
}

// EnsureOffersBatch resolves/creates every (sellableID, retailerID, sku)
// triple in inputs, returning ids in input order. Implemented as a
// sequential loop over [Engine.EnsureOffer] rather than a single UNNEST-CTE
// round-trip — see DESIGN.md for the batching-fidelity tradeoff this accepts.
type OfferInput struct {
	SellableID int64
	RetailerID int64
	SKU        string
}

func (e *Engine) EnsureOffersBatch(ctx context.Context, inputs []OfferInput) ([]int64, error) {
	ids := make([]int64, len(inputs))
	for i, in := range inputs {
		id, err := e.EnsureOffer(ctx, in.SellableID, in.RetailerID, in.SKU)
		if err != nil {
			return nil, fmt.Errorf("upsert: ensure_offers_batch[%d]: %w", i, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// EnsureOfferJurisdiction resolves or creates the (offerID, jurisdictionID)
// scoping row on the modern schema. Callers on a legacy schema should use
// [Engine.EnsureSkuRegion] instead — see [schema.Shape.IsLegacy].
func (e *Engine) EnsureOfferJurisdiction(ctx context.Context, offerID, jurisdictionID, currencyID int64) (int64, error) {
	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
			dbschema.OfferJurisdictionTable.ID, dbschema.OfferJurisdictionTable.Table,
			dbschema.OfferJurisdictionTable.OfferID, dbschema.OfferJurisdictionTable.JurisdictionID),
		offerID, jurisdictionID,
	).Scan(&id)
	if lookupErr == nil {
		return id, nil
	}
	if lookupErr != pgx.ErrNoRows {
		return 0, lookupErr
	}

	return e.withPKRescue(ctx, dbschema.OfferJurisdictionTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		err := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.OfferJurisdictionTable.Table,
				dbschema.OfferJurisdictionTable.OfferID, dbschema.OfferJurisdictionTable.JurisdictionID, dbschema.OfferJurisdictionTable.CurrencyID,
				dbschema.OfferJurisdictionTable.OfferID, dbschema.OfferJurisdictionTable.JurisdictionID,
				dbschema.OfferJurisdictionTable.CurrencyID, dbschema.OfferJurisdictionTable.CurrencyID,
				dbschema.OfferJurisdictionTable.ID,
			),
			offerID, jurisdictionID, currencyID,
		).Scan(&insertedID)
		return insertedID, err
	})
}

type OfferJurisdictionInput struct {
	OfferID        int64
	JurisdictionID int64
	CurrencyID     int64
}

// EnsureOfferJurisdictionsBatch is the batch counterpart of
// [Engine.EnsureOfferJurisdiction] — see the batching note on
// [Engine.EnsureOffersBatch].
func (e *Engine) EnsureOfferJurisdictionsBatch(ctx context.Context, inputs []OfferJurisdictionInput) ([]int64, error) {
	ids := make([]int64, len(inputs))
	for i, in := range inputs {
		id, err := e.EnsureOfferJurisdiction(ctx, in.OfferID, in.JurisdictionID, in.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("upsert: ensure_offer_jurisdictions_batch[%d]: %w", i, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// SkuRegionInput identifies the legacy compat path's unique key:
// (product_id, region_code, retailer, currency).
type SkuRegionInput struct {
	ProductID  int64
	RegionCode string
	Retailer   string
	Currency   string
}

// EnsureSkuRegion is the legacy pricing compat path used when sku_regions
// exists in place of offer_jurisdictions/region_prices. It upserts the
// (product_id, region_code, retailer, currency) row, which on this schema
// collapses Offer+OfferJurisdiction+RegionPrice into a single table.
func (e *Engine) EnsureSkuRegion(ctx context.Context, in SkuRegionInput) (int64, error) {
	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 AND %s = $4`,
			dbschema.SkuRegionTable.ID, dbschema.SkuRegionTable.Table,
			dbschema.SkuRegionTable.ProductID, dbschema.SkuRegionTable.RegionCode,
			dbschema.SkuRegionTable.Retailer, dbschema.SkuRegionTable.Currency),
		in.ProductID, in.RegionCode, in.Retailer, in.Currency,
	).Scan(&id)
	if lookupErr == nil {
		return id, nil
	}
	if lookupErr != pgx.ErrNoRows {
		return 0, lookupErr
	}

	return e.withPKRescue(ctx, dbschema.SkuRegionTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		err := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s, %s)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (%s, %s, %s, %s) DO NOTHING
				RETURNING %s`,
				dbschema.SkuRegionTable.Table,
				dbschema.SkuRegionTable.ProductID, dbschema.SkuRegionTable.RegionCode, dbschema.SkuRegionTable.Retailer, dbschema.SkuRegionTable.Currency,
				dbschema.SkuRegionTable.ProductID, dbschema.SkuRegionTable.RegionCode, dbschema.SkuRegionTable.Retailer, dbschema.SkuRegionTable.Currency,
				dbschema.SkuRegionTable.ID,
			),
			in.ProductID, in.RegionCode, in.Retailer, in.Currency,
		).Scan(&insertedID)
		if err == pgx.ErrNoRows {
			// Lost the race to a concurrent insert of the same key: re-select.
			err = e.pool.QueryRow(ctx,
				fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 AND %s = $4`,
					dbschema.SkuRegionTable.ID, dbschema.SkuRegionTable.Table,
					dbschema.SkuRegionTable.ProductID, dbschema.SkuRegionTable.RegionCode,
					dbschema.SkuRegionTable.Retailer, dbschema.SkuRegionTable.Currency),
				in.ProductID, in.RegionCode, in.Retailer, in.Currency,
			).Scan(&insertedID)
		}
		return insertedID, err
	})
}

// ResolveRegionCode derives a region_code for the legacy compat path. When a
// jurisdictions table exists, countryISO2 is returned as given; that table's
// rows are not queried. Otherwise the region_code of an existing sku_regions
// row for this (product, retailer) is reused, and failing that countryISO2 is
// returned if it is exactly 2 characters long (an error otherwise). The
// countries table is not consulted and the code's case is not changed.
func (e *Engine) ResolveRegionCode(ctx context.Context, countryISO2 string, productID int64, retailer string) (string, error) {
	hasJurisdictions, err := e.cache.HasTable(ctx, dbschema.JurisdictionTable.Table)
	if err != nil {
		return "", err
	}
	if hasJurisdictions {
		return countryISO2, nil
	}

	var existing string
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 LIMIT 1`,
			dbschema.SkuRegionTable.RegionCode, dbschema.SkuRegionTable.Table,
			dbschema.SkuRegionTable.ProductID, dbschema.SkuRegionTable.Retailer),
		productID, retailer,
	).Scan(&existing)
	if lookupErr == nil {
		return existing, nil
	}
	if lookupErr != pgx.ErrNoRows {
		return "", lookupErr
	}

	if len(countryISO2) != 2 {
		return "", fmt.Errorf("upsert: resolve_region_code: ambiguous country code %q", countryISO2)
	}
	return countryISO2, nil
}
