// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// runRefdataStage migrates currencies, platforms, and countries in streamed
// batches — stage 2 of spec.md §4.8. Currencies identify uniquely by code,
// so each batch resolves in one UNNEST-driven CTE upsert. Countries are
// upserted one row at a time through upsert.EnsureCountry; they are not
// batched. Platforms additionally need the Upsert Engine's fuzzy synonym
// matching (see upsert.EnsurePlatform), so they also resolve one row at a
// time instead of in a single statement.
func (c *Context) runRefdataStage(ctx context.Context) error {
	batchSize := c.Import.LookupBatch
	if batchSize <= 0 {
		batchSize = 512
	}

	if err := c.migrateCurrencies(ctx, batchSize); err != nil {
		return err
	}
	if err := c.migrateCountries(ctx, batchSize); err != nil {
		return err
	}
	if err := c.migratePlatforms(ctx, batchSize); err != nil {
		return err
	}
	return nil
}

func (c *Context) migrateCurrencies(ctx context.Context, batchSize int) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "currencies")
	if err != nil || !hasTable {
		return err
	}

	rows, err := c.Snapshot.QueryContext(ctx, `SELECT code, name, minor_unit FROM currencies ORDER BY id`)
	if err != nil {
		return fmt.Errorf("legacydriver: query currencies: %w", err)
	}
	defer rows.Close()

	var codes, names []string
	var minorUnits []int
	flush := func() error {
		if len(codes) == 0 {
			return nil
		}
		t := dbschema.CurrencyTable
		mapped, qErr := c.Pool.Query(ctx, fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s)
			SELECT * FROM UNNEST($1::text[], $2::text[], $3::int[])
			ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s
			RETURNING %s, %s`,
			t.Table, t.Code, t.Name, t.MinorUnit,
			t.Code, t.Name, t.Name,
			t.ID, t.Code,
		), codes, names, minorUnits)
		if qErr != nil {
			return fmt.Errorf("legacydriver: batch upsert currencies: %w", qErr)
		}
		defer mapped.Close()
		for mapped.Next() {
			var id int64
			var code string
			if err := mapped.Scan(&id, &code); err != nil {
				return err
			}
			c.Entities.PutCurrencyID(strings.ToUpper(code), id)
		}
		codes, names, minorUnits = codes[:0], names[:0], minorUnits[:0]
		return mapped.Err()
	}

	count := 0
	for rows.Next() {
		var code, name string
		var minorUnit sql.NullInt64
		if err := rows.Scan(&code, &name, &minorUnit); err != nil {
			return fmt.Errorf("legacydriver: scan currencies row: %w", err)
		}
		mu := 2
		if minorUnit.Valid {
			mu = int(minorUnit.Int64)
		}
		codes = append(codes, strings.ToUpper(code))
		names = append(names, name)
		minorUnits = append(minorUnits, mu)
		count++

		if len(codes) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	c.Log.Info("currencies_migrated", "rows", count)
	return nil
}

func (c *Context) migrateCountries(ctx context.Context, batchSize int) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "countries")
	if err != nil || !hasTable {
		return err
	}

	rows, err := c.Snapshot.QueryContext(ctx, `SELECT iso2, name, currency_code FROM countries ORDER BY id`)
	if err != nil {
		return fmt.Errorf("legacydriver: query countries: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var iso2, name string
		var currencyCode sql.NullString
		if err := rows.Scan(&iso2, &name, &currencyCode); err != nil {
			return fmt.Errorf("legacydriver: scan countries row: %w", err)
		}

		var currencyID *int64
		if currencyCode.Valid && currencyCode.String != "" {
			if id, ok := c.Entities.CurrencyID(strings.ToUpper(currencyCode.String)); ok {
				currencyID = &id
			}
		}

		if _, err := c.Engine.EnsureCountry(ctx, iso2, name, currencyID); err != nil {
			return fmt.Errorf("legacydriver: ensure country %s: %w", iso2, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.Log.Info("countries_migrated", "rows", count)
	return nil
}

func (c *Context) migratePlatforms(ctx context.Context, batchSize int) error {
	hasTable, err := sqliteHasTable(ctx, c.Snapshot, "platforms")
	if err != nil || !hasTable {
		return err
	}

	rows, err := c.Snapshot.QueryContext(ctx, `SELECT id, name, code, family FROM platforms ORDER BY id`)
	if err != nil {
		return fmt.Errorf("legacydriver: query platforms: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var legacyID int64
		var name string
		var code, family sql.NullString
		if err := rows.Scan(&legacyID, &name, &code, &family); err != nil {
			return fmt.Errorf("legacydriver: scan platforms row: %w", err)
		}

		var codePtr, familyPtr *string
		if code.Valid {
			codePtr = &code.String
		}
		if family.Valid {
			familyPtr = &family.String
		}

		resolvedID, err := c.Engine.EnsurePlatform(ctx, name, codePtr, familyPtr)
		if err != nil {
			return fmt.Errorf("legacydriver: ensure platform %s: %w", name, err)
		}
		c.putPlatformMapping(legacyID, resolvedID)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.Log.Info("platforms_migrated", "rows", count)
	return nil
}
