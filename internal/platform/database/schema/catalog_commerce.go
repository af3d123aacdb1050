// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RetailerTableT names the columns of the `retailers` table.
type RetailerTableT struct {
	Table string
	ID    string
	Name  string
	Slug  string
}

var RetailerTable = RetailerTableT{
	Table: "retailers",
	ID:    "id",
	Name:  "name",
	Slug:  "slug",
}

func (t RetailerTableT) Columns() []string { return []string{t.ID, t.Name, t.Slug} }

// OfferTableT names the columns of the `offers` table.
type OfferTableT struct {
	Table      string
	ID         string
	SellableID string
	RetailerID string
	SKU        string
}

var OfferTable = OfferTableT{
	Table:      "offers",
	ID:         "id",
	SellableID: "sellable_id",
	RetailerID: "retailer_id",
	SKU:        "sku",
}

func (t OfferTableT) Columns() []string {
	return []string{t.ID, t.SellableID, t.RetailerID, t.SKU}
}

// OfferJurisdictionTableT names the columns of the `offer_jurisdictions`
// table. On legacy schemas this collapses into SkuRegionTable instead.
type OfferJurisdictionTableT struct {
	Table          string
	ID             string
	OfferID        string
	JurisdictionID string
	CurrencyID     string
}

var OfferJurisdictionTable = OfferJurisdictionTableT{
	Table:          "offer_jurisdictions",
	ID:             "id",
	OfferID:        "offer_id",
	JurisdictionID: "jurisdiction_id",
	CurrencyID:     "currency_id",
}

func (t OfferJurisdictionTableT) Columns() []string {
	return []string{t.ID, t.OfferID, t.JurisdictionID, t.CurrencyID}
}

// SkuRegionTableT names the columns of the legacy `sku_regions` table, the
// Laravel-era collapse of Offer+OfferJurisdiction+RegionPrice into one row
// keyed by (product_id, region_code, retailer, currency).
type SkuRegionTableT struct {
	Table        string
	ID           string
	ProductID    string
	RegionCode   string
	Retailer     string
	Currency     string
	AmountMinor  string
	RecordedAt   string
	TaxInclusive string
}

var SkuRegionTable = SkuRegionTableT{
	Table:        "sku_regions",
	ID:           "id",
	ProductID:    "product_id",
	RegionCode:   "region_code",
	Retailer:     "retailer",
	Currency:     "currency",
	AmountMinor:  "amount_minor",
	RecordedAt:   "recorded_at",
	TaxInclusive: "tax_inclusive",
}

func (t SkuRegionTableT) Columns() []string {
	return []string{
		t.ID, t.ProductID, t.RegionCode, t.Retailer, t.Currency,
		t.AmountMinor, t.RecordedAt, t.TaxInclusive,
	}
}

// RegionPriceTableT names the columns of the `region_prices` table.
type RegionPriceTableT struct {
	Table               string
	ID                  string
	OfferJurisdictionID string
	RecordedAt          string
	AmountMinor         string
	FiatAmount          string
	LocalAmount         string
	BTCValue            string
	FXRateSnapshot      string
	BTCRateSnapshot     string
	TaxInclusive        string
	RawPayload          string
}

var RegionPriceTable = RegionPriceTableT{
	Table:               "region_prices",
	ID:                  "id",
	OfferJurisdictionID: "offer_jurisdiction_id",
	RecordedAt:          "recorded_at",
	AmountMinor:         "amount_minor",
	FiatAmount:          "fiat_amount",
	LocalAmount:         "local_amount",
	BTCValue:            "btc_value",
	FXRateSnapshot:      "fx_rate_snapshot",
	BTCRateSnapshot:     "btc_rate_snapshot",
	TaxInclusive:        "tax_inclusive",
	RawPayload:          "raw_payload",
}

func (t RegionPriceTableT) Columns() []string {
	return []string{
		t.ID, t.OfferJurisdictionID, t.RecordedAt, t.AmountMinor, t.FiatAmount,
		t.LocalAmount, t.BTCValue, t.FXRateSnapshot, t.BTCRateSnapshot,
		t.TaxInclusive, t.RawPayload,
	}
}
