// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pricing implements the Pricing Ingestor: resolving a batch of
[model.PriceRow]s to their currency/FX context, computing BTC and USD
snapshots, and writing region_prices as one pgx.Batch of per-row INSERTs
with PK-sequence rescue.

Architecture:

  - Ingestor holds the dependencies (pool, rate resolver) for one run.
  - RateResolver fronts an in-process per-currency cache with an optional
    Redis-backed tier (internal/platform/ratecache) — see [NewIngestor].
*/
package pricing

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gamecatalog/internal/catalog/model"
	"github.com/taibuivan/gamecatalog/internal/catalog/schema"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
	"github.com/taibuivan/gamecatalog/internal/platform/dberr"
)

const (
	defaultAgent    = "pipeline"
	defaultPriority = 0
)

// CurrentPriceRow is emitted per successfully ingested [model.PriceRow], for
// the caller to fold into its own "current price" view.
type CurrentPriceRow struct {
	OfferJurisdictionID int64
	AmountMinor         int64
	RecordedAt          time.Time
	Agent               string
	AgentPriority       int
}

// Result is the outcome of one [Ingestor.Ingest] call.
type Result struct {
	OfferJurisdictionIDs []int64
	CurrentUpdates       []CurrentPriceRow
}

// currencyContext is what a PriceRow's offer_jurisdiction_id resolves to.
type currencyContext struct {
	currencyID   int64
	countryID    *int64
	minorUnit    int
	currencyCode string
}

// RateResolver abstracts FX/BTC rate lookups so [Ingestor] never imports an
// exchange-rate client directly; the in-process+Redis two-tier cache lives
// in internal/platform/ratecache and the caller's exchange-rate client.
type RateResolver interface {
	// USDRate returns currencyCode's rate against USD, or false if unknown
	// (the caller should default to 1.0).
	USDRate(ctx context.Context, currencyCode string) (float64, bool)
	// BTCRate returns currencyCode's rate against BTC, or false if unknown
	// (the row is still inserted, with NULL btc_value/btc_rate_snapshot).
	BTCRate(ctx context.Context, currencyCode string) (float64, bool)
}

// Ingestor implements the Pricing Ingestor over pool, resolving rates
// through resolver. On a detected legacy shape, it writes sku_regions rows
// directly instead of region_prices, since the legacy schema collapses the
// two into one table.
type Ingestor struct {
	pool     *pgxpool.Pool
	cache    *schema.Cache
	shape    *schema.Shape
	resolver RateResolver
}

// NewIngestor constructs an [Ingestor] bound to shape, the pre-detected
// schema shape for this run (see internal/catalog/schema.DetectShape).
func NewIngestor(pool *pgxpool.Pool, cache *schema.Cache, shape *schema.Shape, resolver RateResolver) *Ingestor {
	return &Ingestor{pool: pool, cache: cache, shape: shape, resolver: resolver}
}

// ToSatoshiPrecision rounds value to 1e-8, half-away-from-zero, mirroring
// PHP's number_format($value, 8, '.', '') closely enough for storage.
func ToSatoshiPrecision(value float64) float64 {
	return math.Round(value*1e8) / 1e8
}

// Ingest resolves, prices, and writes rows. Rows whose offer_jurisdiction_id
// cannot be mapped to a currency are skipped with no error (per invariant
// I1: never guess a currency mapping).
func (ig *Ingestor) Ingest(ctx context.Context, rows []model.PriceRow) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}

	if ig.shape.IsLegacy() {
		return ig.ingestLegacy(ctx, rows)
	}

	contexts, err := ig.resolveCurrencyContexts(ctx, rows)
	if err != nil {
		return Result{}, err
	}

	type insertRow struct {
		offerJurisdictionID int64
		recordedAt          time.Time
		amountMinor         int64
		fiatAmount          float64
		localAmount         float64
		btcValue            *float64
		taxInclusive        bool
		fxRateSnapshot      float64
		btcRateSnapshot     *float64
		rawPayload          []byte
	}

	var toInsert []insertRow
	touched := map[int64]struct{}{}
	var currentUpdates []CurrentPriceRow

	for _, r := range rows {
		cc, ok := contexts[r.OfferJurisdictionID]
		if !ok {
			continue
		}

		scale := math.Pow(10, math.Max(float64(cc.minorUnit), 0))
		amountMajor := float64(r.AmountMinor) / scale

		var btcValue, btcSnapshot *float64
		if rate, found := ig.resolver.BTCRate(ctx, cc.currencyCode); found {
			v := ToSatoshiPrecision(amountMajor * rate)
			s := ToSatoshiPrecision(rate)
			btcValue, btcSnapshot = &v, &s
		}

		fxRate := 1.0
		if rate, found := ig.resolver.USDRate(ctx, cc.currencyCode); found {
			fxRate = rate
		}

		toInsert = append(toInsert, insertRow{
			offerJurisdictionID: r.OfferJurisdictionID,
			recordedAt:          r.RecordedAt,
			amountMinor:         r.AmountMinor,
			fiatAmount:          amountMajor,
			localAmount:         amountMajor,
			btcValue:            btcValue,
			taxInclusive:        r.TaxInclusive,
			fxRateSnapshot:      fxRate,
			btcRateSnapshot:     btcSnapshot,
			rawPayload:          encodeMeta(r.Meta),
		})
		touched[r.OfferJurisdictionID] = struct{}{}
		currentUpdates = append(currentUpdates, CurrentPriceRow{
			OfferJurisdictionID: r.OfferJurisdictionID,
			AmountMinor:         r.AmountMinor,
			RecordedAt:          r.RecordedAt,
			Agent:               defaultAgent,
			AgentPriority:       defaultPriority,
		})
	}

	if len(toInsert) == 0 {
		return Result{}, nil
	}

	insert := func(ctx context.Context) error {
		batch := &pgx.Batch{}
		query := insertQuery()
		for _, row := range toInsert {
			batch.Queue(query,
				row.offerJurisdictionID, row.recordedAt, row.amountMinor,
				row.fiatAmount, row.localAmount, row.btcValue, row.taxInclusive,
				row.fxRateSnapshot, row.btcRateSnapshot, row.rawPayload,
			)
		}
		result := ig.pool.SendBatch(ctx, batch)
		defer result.Close()
		for range toInsert {
			if _, err := result.Exec(); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insert(ctx); err != nil {
		if !dberr.IsUniqueViolation(err) || dberr.ConstraintName(err) != dbschema.RegionPriceTable.Table+"_pkey" {
			return Result{}, err
		}
		if rescueErr := ig.rescueSequence(ctx); rescueErr != nil {
			return Result{}, rescueErr
		}
		if err := insert(ctx); err != nil {
			return Result{}, err
		}
	}

	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}

	return Result{OfferJurisdictionIDs: ids, CurrentUpdates: currentUpdates}, nil
}

func (ig *Ingestor) rescueSequence(ctx context.Context) error {
	table := dbschema.RegionPriceTable.Table
	_, err := ig.pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence($1, 'id'), (SELECT COALESCE(MAX(id), 0) + 1 FROM `+table+`), false)`,
		table,
	)
	return err
}
