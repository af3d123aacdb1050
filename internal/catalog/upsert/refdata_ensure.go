// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gamecatalog/internal/catalog/slugkit"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
	"github.com/taibuivan/gamecatalog/pkg/pointer"
)

// EnsureCurrency resolves (or inserts) a Currency by its uppercase ISO-4217
// code.
func (e *Engine) EnsureCurrency(ctx context.Context, code, name string, minorUnit int) (int64, error) {
	code = strings.ToUpper(code)
	if id, ok := e.entities.CurrencyID(code); ok {
		return id, nil
	}

	id, err := e.withPKRescue(ctx, dbschema.CurrencyTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.CurrencyTable.Table, dbschema.CurrencyTable.Code, dbschema.CurrencyTable.Name, dbschema.CurrencyTable.MinorUnit,
				dbschema.CurrencyTable.Code, dbschema.CurrencyTable.Name, dbschema.CurrencyTable.Name,
				dbschema.CurrencyTable.ID,
			),
			code, name, minorUnit,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}

	e.entities.PutCurrencyID(code, id)
	return id, nil
}

// EnsureCountry resolves (or inserts) a Country by its uppercase ISO2 code.
func (e *Engine) EnsureCountry(ctx context.Context, iso2, name string, currencyID *int64) (int64, error) {
	iso2 = strings.ToUpper(iso2)
	if id, ok := e.entities.CountryID(iso2); ok {
		return id, nil
	}

	iso3 := iso3ForInsert(iso2)

	id, err := e.withPKRescue(ctx, dbschema.CountryTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s, %s)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = COALESCE(EXCLUDED.%s, %s.%s)
				RETURNING %s`,
				dbschema.CountryTable.Table, dbschema.CountryTable.ISO2, dbschema.CountryTable.ISO3, dbschema.CountryTable.Name, dbschema.CountryTable.CurrencyID,
				dbschema.CountryTable.ISO2,
				dbschema.CountryTable.Name, dbschema.CountryTable.Name,
				dbschema.CountryTable.CurrencyID, dbschema.CountryTable.CurrencyID, dbschema.CountryTable.Table, dbschema.CountryTable.CurrencyID,
				dbschema.CountryTable.ID,
			),
			iso2, iso3, name, currencyID,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}

	e.entities.PutCountryID(iso2, id)
	return id, nil
}

// EnsureJurisdiction resolves (or inserts) a Jurisdiction for countryID
// scoped to regionCode (nil meaning "country-wide"). Returns 0 when the
// jurisdictions table does not exist on this schema (legacy deployments
// use countryID directly instead).
func (e *Engine) EnsureJurisdiction(ctx context.Context, countryID int64, regionCode *string) (int64, error) {
	hasTable, err := e.cache.HasTable(ctx, dbschema.JurisdictionTable.Table)
	if err != nil {
		return 0, err
	}
	if !hasTable {
		return 0, nil
	}

	region := pointer.Val(regionCode)
	if id, ok := e.entities.JurisdictionID(countryID, region); ok {
		return id, nil
	}

	var id int64
	var lookupErr error
	if regionCode != nil {
		lookupErr = e.pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
				dbschema.JurisdictionTable.ID, dbschema.JurisdictionTable.Table,
				dbschema.JurisdictionTable.CountryID, dbschema.JurisdictionTable.RegionCode),
			countryID, *regionCode,
		).Scan(&id)
	} else {
		lookupErr = e.pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
				dbschema.JurisdictionTable.ID, dbschema.JurisdictionTable.Table,
				dbschema.JurisdictionTable.CountryID, dbschema.JurisdictionTable.RegionCode),
			countryID,
		).Scan(&id)
	}
	if lookupErr == nil {
		e.entities.PutJurisdictionID(countryID, region, id)
		return id, nil
	}
	if lookupErr != pgx.ErrNoRows {
		return 0, lookupErr
	}

	id, err = e.withPKRescue(ctx, dbschema.JurisdictionTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s)
				VALUES ($1, $2)
				RETURNING %s`,
				dbschema.JurisdictionTable.Table, dbschema.JurisdictionTable.CountryID, dbschema.JurisdictionTable.RegionCode,
				dbschema.JurisdictionTable.ID,
			),
			countryID, regionCode,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}

	e.entities.PutJurisdictionID(countryID, region, id)
	return id, nil
}

func iso3ForInsert(iso2 string) *string {
	iso3 := slugkit.ISO2ToISO3(iso2)
	if iso3 == "" {
		return nil
	}
	return pointer.To(iso3)
}
