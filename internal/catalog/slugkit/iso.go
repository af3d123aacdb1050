// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slugkit

import "strings"

// iso2to3 is a static ISO-3166 alpha-2 to alpha-3 lookup table covering the
// jurisdictions this catalog actually observes storefront pricing for, plus
// the handful of non-ISO aliases upstream feeds are known to send.
//
// ZH -> CHN is intentional: some providers send a language code ("zh" for
// Chinese) where a country code is expected, and downstream jurisdiction
// resolution needs it mapped to China rather than rejected outright.
var iso2to3 = map[string]string{
	"US": "USA", "CA": "CAN", "MX": "MEX", "BR": "BRA", "AR": "ARG",
	"GB": "GBR", "IE": "IRL", "FR": "FRA", "DE": "DEU", "ES": "ESP",
	"PT": "PRT", "IT": "ITA", "NL": "NLD", "BE": "BEL", "LU": "LUX",
	"CH": "CHE", "AT": "AUT", "SE": "SWE", "NO": "NOR", "DK": "DNK",
	"FI": "FIN", "IS": "ISL", "PL": "POL", "CZ": "CZE", "SK": "SVK",
	"HU": "HUN", "RO": "ROU", "BG": "BGR", "GR": "GRC", "TR": "TUR",
	"RU": "RUS", "UA": "UKR", "CN": "CHN", "JP": "JPN", "KR": "KOR",
	"TW": "TWN", "HK": "HKG", "SG": "SGP", "MY": "MYS", "TH": "THA",
	"VN": "VNM", "PH": "PHL", "ID": "IDN", "IN": "IND", "PK": "PAK",
	"BD": "BGD", "AU": "AUS", "NZ": "NZL", "ZA": "ZAF", "EG": "EGY",
	"NG": "NGA", "KE": "KEN", "MA": "MAR", "IL": "ISR", "SA": "SAU",
	"AE": "ARE", "QA": "QAT", "KW": "KWT", "CL": "CHL", "CO": "COL",
	"PE": "PER", "UY": "URY", "PY": "PRY", "BO": "BOL", "EC": "ECU",
	"VE": "VEN", "CR": "CRI", "PA": "PAN", "DO": "DOM", "HR": "HRV",
	"SI": "SVN", "RS": "SRB", "LT": "LTU", "LV": "LVA", "EE": "EST",
	"CY": "CYP", "MT": "MLT",

	// Intentional non-ISO alias: "ZH" (Chinese language code) -> China.
	"ZH": "CHN",
}

// ISO2ToISO3 maps an ISO-3166 alpha-2 (or tolerated alias) code to its
// alpha-3 equivalent, uppercasing code first. Returns "" when unknown.
func ISO2ToISO3(code string) string {
	return iso2to3[strings.ToUpper(strings.TrimSpace(code))]
}
