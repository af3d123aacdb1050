// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/gamecatalog/pkg/slice"
)

// ProductSummary is one row of a categoryGridRetrieve page, normalized out
// of the PlayStation Store's GraphQL response shape.
type ProductSummary struct {
	ProductID       string
	ConceptID       string
	Name            string
	ReleaseDate     string
	BasePriceMinor  *int64
	DiscountedMinor *int64
	IsFree          bool
	MediaImageURLs  []string
	MediaVideoURLs  []string
	Genres          []string
	AverageRating   *float64
	RatingCount     *int64
}

// ProductDetail is the normalized metGetProductById payload used to fill in
// whatever categoryGridRetrieve omitted (release date, genres).
type ProductDetail struct {
	ProductID   string
	Name        string
	Description string
	ReleaseDate string
	Genres      []string
	Images      []string
	Videos      []string
	PriceMinor  *int64
}

// categoryGridResponse mirrors the subset of categoryGridRetrieve's "data"
// payload this driver consumes; the real response nests far more facet and
// pagination metadata that is of no interest here.
type categoryGridResponse struct {
	CategoryGridRetrieve struct {
		Items []struct {
			ID      string `json:"id"`
			Concept struct {
				ID string `json:"id"`
			} `json:"concept"`
			Name            string `json:"name"`
			ReleaseDate     string `json:"releaseDate"`
			IsFree          bool   `json:"isFree"`
			DefaultSkuPrice struct {
				BasePriceValue       *int64 `json:"basePriceValue"`
				DiscountedPriceValue *int64 `json:"discountedPriceValue"`
			} `json:"defaultSku"`
			Media []struct {
				Type string `json:"type"`
				URL  string `json:"url"`
				Role string `json:"role"`
			} `json:"media"`
			ProductGenres []string `json:"productGenres"`
		} `json:"items"`
	} `json:"categoryGridRetrieve"`
}

// extractProductSummaries parses one categoryGridRetrieve response page.
func extractProductSummaries(raw json.RawMessage) ([]ProductSummary, error) {
	var doc categoryGridResponse
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &JSONError{Cause: err}
	}

	out := make([]ProductSummary, 0, len(doc.CategoryGridRetrieve.Items))
	for _, item := range doc.CategoryGridRetrieve.Items {
		summary := ProductSummary{
			ProductID:       item.ID,
			ConceptID:       item.Concept.ID,
			Name:            item.Name,
			ReleaseDate:     item.ReleaseDate,
			IsFree:          item.IsFree,
			BasePriceMinor:  item.DefaultSkuPrice.BasePriceValue,
			DiscountedMinor: item.DefaultSkuPrice.DiscountedPriceValue,
			Genres:          dedupSorted(item.ProductGenres),
		}
		for _, m := range item.Media {
			lower := strings.ToLower(m.Type)
			switch {
			case strings.Contains(lower, "video"):
				summary.MediaVideoURLs = append(summary.MediaVideoURLs, m.URL)
			case m.URL != "":
				summary.MediaImageURLs = append(summary.MediaImageURLs, m.URL)
			}
		}
		if item.ID != "" {
			out = append(out, summary)
		}
	}
	return out, nil
}

type productDetailResponse struct {
	MetGetProductByID struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"longDescription"`
		ReleaseDate string   `json:"releaseDate"`
		Genres      []string `json:"productGenres"`
		Media       []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"media"`
	} `json:"metGetProductById"`
}

// extractProductDetail parses one metGetProductById response.
func extractProductDetail(raw json.RawMessage) (ProductDetail, error) {
	var doc productDetailResponse
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ProductDetail{}, &JSONError{Cause: err}
	}

	detail := ProductDetail{
		ProductID:   doc.MetGetProductByID.ID,
		Name:        doc.MetGetProductByID.Name,
		Description: doc.MetGetProductByID.Description,
		ReleaseDate: doc.MetGetProductByID.ReleaseDate,
		Genres:      dedupSorted(doc.MetGetProductByID.Genres),
	}
	for _, m := range doc.MetGetProductByID.Media {
		if strings.Contains(strings.ToLower(m.Type), "video") {
			detail.Videos = append(detail.Videos, m.URL)
		} else if m.URL != "" {
			detail.Images = append(detail.Images, m.URL)
		}
	}
	return detail, nil
}

type starRatingResponse struct {
	WcaProductStarRatingRetrieve struct {
		AggregatedRating struct {
			Average float64 `json:"average"`
			Count   int64   `json:"count"`
		} `json:"aggregatedRating"`
	} `json:"wcaProductStarRatingRetrieve"`
}

// extractStarRating parses one wcaProductStarRatingRetrieve response,
// returning ok=false when no rating data is present (a brand-new release).
func extractStarRating(raw json.RawMessage) (average float64, count int64, ok bool) {
	var doc starRatingResponse
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, 0, false
	}
	r := doc.WcaProductStarRatingRetrieve.AggregatedRating
	if r.Count == 0 {
		return 0, 0, false
	}
	return r.Average, r.Count, true
}

// parseReleaseDate accepts either an RFC3339 date or a bare "YYYY-MM-DD".
func parseReleaseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// minorToDecimal renders a minor-unit integer amount (e.g. cents) as a
// decimal string for logging; the Pricing Ingestor works in minor units
// directly so this is diagnostic only.
func minorToDecimal(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	whole := minor / 100
	frac := minor % 100
	return sign + strconv.FormatInt(whole, 10) + "." + padTwo(frac)
}

func padTwo(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

func dedupSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := slice.Filter(in, func(s string) bool {
		if s == "" {
			return false
		}
		if _, dup := seen[s]; dup {
			return false
		}
		seen[s] = struct{}{}
		return true
	})
	sort.Strings(out)
	return out
}
