// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package refdata

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gamecatalog/internal/platform/apperr"
	requestutil "github.com/taibuivan/gamecatalog/internal/platform/request"
	"github.com/taibuivan/gamecatalog/internal/platform/respond"
)

// Handler implements the ops server's read-only refdata endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler] over service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the refdata endpoints.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/platforms", h.listPlatforms)
	router.Get("/platforms/{id}", h.getPlatform)

	router.Get("/currencies", h.listCurrencies)
	router.Get("/currencies/{code}", h.getCurrency)

	router.Get("/countries", h.listCountries)
	router.Get("/countries/{iso2}", h.getCountry)
	router.Get("/countries/{iso2}/jurisdictions", h.listJurisdictions)

	return router
}

/*
GET /refdata/platforms.

Description: Retrieves every canonical platform known to the catalog.

Response:
  - 200: []model.Platform: Success
*/
func (h *Handler) listPlatforms(writer http.ResponseWriter, request *http.Request) {
	platforms, err := h.service.ListPlatforms(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, platforms)
}

/*
GET /refdata/platforms/{id}.

Description: Retrieves a single platform by its numeric identifier.

Response:
  - 200: model.Platform: Success
  - 400: VALIDATION_ERROR: Invalid ID format
  - 404: ErrNotFound: Platform missing
*/
func (h *Handler) getPlatform(writer http.ResponseWriter, request *http.Request) {
	idStr := requestutil.ID(request, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("invalid platform id"))
		return
	}

	platform, err := h.service.GetPlatform(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, platform)
}

/*
GET /refdata/currencies.

Description: Retrieves every ISO-4217 currency known to the catalog.

Response:
  - 200: []model.Currency: Success
*/
func (h *Handler) listCurrencies(writer http.ResponseWriter, request *http.Request) {
	currencies, err := h.service.ListCurrencies(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, currencies)
}

/*
GET /refdata/currencies/{code}.

Description: Resolves a single currency by its ISO-4217 code.

Response:
  - 200: model.Currency: Success
  - 404: ErrNotFound: Currency missing
*/
func (h *Handler) getCurrency(writer http.ResponseWriter, request *http.Request) {
	code := chi.URLParam(request, "code")

	currency, err := h.service.GetCurrency(request.Context(), code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, currency)
}

/*
GET /refdata/countries.

Description: Retrieves every ISO-3166 country known to the catalog.

Response:
  - 200: []model.Country: Success
*/
func (h *Handler) listCountries(writer http.ResponseWriter, request *http.Request) {
	countries, err := h.service.ListCountries(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, countries)
}

/*
GET /refdata/countries/{iso2}.

Description: Resolves a single country by its ISO2 code.

Response:
  - 200: model.Country: Success
  - 404: ErrNotFound: Country missing
*/
func (h *Handler) getCountry(writer http.ResponseWriter, request *http.Request) {
	iso2 := chi.URLParam(request, "iso2")

	country, err := h.service.GetCountry(request.Context(), iso2)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, country)
}

/*
GET /refdata/countries/{iso2}/jurisdictions.

Description: Retrieves every subdivision-level jurisdiction scoped to a
country. Returns an empty list on deployments with no jurisdictions table.

Response:
  - 200: []model.Jurisdiction: Success
  - 404: ErrNotFound: Country missing
*/
func (h *Handler) listJurisdictions(writer http.ResponseWriter, request *http.Request) {
	iso2 := chi.URLParam(request, "iso2")

	country, err := h.service.GetCountry(request.Context(), iso2)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	jurisdictions, err := h.service.ListJurisdictions(request.Context(), country.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, jurisdictions)
}
