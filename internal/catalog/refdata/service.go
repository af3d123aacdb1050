// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package refdata exposes read-only Platform/Currency/Country/Jurisdiction
lookups over the catalog schema, for the ops server's operator tooling
(cmd/apiimport). It never writes — all mutation goes through
internal/catalog/upsert.
*/
package refdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	"github.com/taibuivan/gamecatalog/internal/platform/apperr"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// Service implements read-only reference-data lookups backed by a
// [pgxpool.Pool]. Constructed once in cmd/apiimport/main.go.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a [Service] over pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// ListPlatforms returns every canonical platform, ordered by name.
func (s *Service) ListPlatforms(ctx context.Context) ([]model.Platform, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s ORDER BY %s`,
			dbschema.PlatformTable.ID, dbschema.PlatformTable.Name,
			dbschema.PlatformTable.Code, dbschema.PlatformTable.Family,
			dbschema.PlatformTable.Table, dbschema.PlatformTable.Name),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Platform
	for rows.Next() {
		var p model.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Family); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlatform resolves a single platform by its numeric id.
func (s *Service) GetPlatform(ctx context.Context, id int64) (model.Platform, error) {
	var p model.Platform
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
			dbschema.PlatformTable.ID, dbschema.PlatformTable.Name,
			dbschema.PlatformTable.Code, dbschema.PlatformTable.Family,
			dbschema.PlatformTable.Table, dbschema.PlatformTable.ID),
		id,
	).Scan(&p.ID, &p.Name, &p.Code, &p.Family)
	if err == pgx.ErrNoRows {
		return model.Platform{}, apperr.NotFound("Platform")
	}
	return p, err
}

// ListCurrencies returns every ISO-4217 currency, ordered by code.
func (s *Service) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s ORDER BY %s`,
			dbschema.CurrencyTable.ID, dbschema.CurrencyTable.Code,
			dbschema.CurrencyTable.Name, dbschema.CurrencyTable.MinorUnit,
			dbschema.CurrencyTable.Table, dbschema.CurrencyTable.Code),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Currency
	for rows.Next() {
		var c model.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.MinorUnit); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCurrency resolves a single currency by its ISO-4217 code.
func (s *Service) GetCurrency(ctx context.Context, code string) (model.Currency, error) {
	var c model.Currency
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
			dbschema.CurrencyTable.ID, dbschema.CurrencyTable.Code,
			dbschema.CurrencyTable.Name, dbschema.CurrencyTable.MinorUnit,
			dbschema.CurrencyTable.Table, dbschema.CurrencyTable.Code),
		code,
	).Scan(&c.ID, &c.Code, &c.Name, &c.MinorUnit)
	if err == pgx.ErrNoRows {
		return model.Currency{}, apperr.NotFound("Currency")
	}
	return c, err
}

// ListCountries returns every ISO-3166 country, ordered by ISO2 code.
func (s *Service) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s`,
			dbschema.CountryTable.ID, dbschema.CountryTable.ISO2,
			dbschema.CountryTable.ISO3, dbschema.CountryTable.Name,
			dbschema.CountryTable.CurrencyID,
			dbschema.CountryTable.Table, dbschema.CountryTable.ISO2),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.ISO2, &c.ISO3, &c.Name, &c.CurrencyID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCountry resolves a single country by its ISO2 code.
func (s *Service) GetCountry(ctx context.Context, iso2 string) (model.Country, error) {
	var c model.Country
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
			dbschema.CountryTable.ID, dbschema.CountryTable.ISO2,
			dbschema.CountryTable.ISO3, dbschema.CountryTable.Name,
			dbschema.CountryTable.CurrencyID,
			dbschema.CountryTable.Table, dbschema.CountryTable.ISO2),
		iso2,
	).Scan(&c.ID, &c.ISO2, &c.ISO3, &c.Name, &c.CurrencyID)
	if err == pgx.ErrNoRows {
		return model.Country{}, apperr.NotFound("Country")
	}
	return c, err
}

// ListJurisdictions returns every jurisdiction scoped to countryID.
func (s *Service) ListJurisdictions(ctx context.Context, countryID int64) ([]model.Jurisdiction, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
			dbschema.JurisdictionTable.ID, dbschema.JurisdictionTable.CountryID,
			dbschema.JurisdictionTable.RegionCode, dbschema.JurisdictionTable.Table,
			dbschema.JurisdictionTable.CountryID, dbschema.JurisdictionTable.ID),
		countryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Jurisdiction
	for rows.Next() {
		var j model.Jurisdiction
		if err := rows.Scan(&j.ID, &j.CountryID, &j.RegionCode); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
