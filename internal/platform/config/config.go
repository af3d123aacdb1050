// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values, and
'go-playground/validator' to enforce cross-field invariants the tag-based
parser can't express on its own.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB pool, rate cache) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures both binaries are Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// # Configuration Schema

// Config holds all runtime configuration shared by cmd/legacyimport and
// cmd/apiimport.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// ServerPort is used by cmd/apiimport's ops HTTP surface.
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DB         DBConfig
	Perf       PerfConfig
	Import     ImportConfig
	API        APIDriverConfig
	Strictness StrictnessConfig
}

// DBConfig groups the database connection contract from spec.md §6.
// DSN resolves in priority order: SUPABASE_DB_SESSION_URL, SUPABASE_DB_URL,
// DATABASE_URL.
type DBConfig struct {
	SupabaseSessionURL string `env:"SUPABASE_DB_SESSION_URL"`
	SupabaseURL        string `env:"SUPABASE_DB_URL"`
	DatabaseURL        string `env:"DATABASE_URL"`
	MaxConns           int    `env:"DB_MAX_CONNS"         envDefault:"100"`
	DisableSessionSwap bool   `env:"DISABLE_SESSION_SWAP" envDefault:"false"`

	// RedisURL is optional: when unset, internal/platform/ratecache falls
	// back to the in-process-only FX/BTC rate cache.
	RedisURL string `env:"REDIS_URL"`

	// FXAPIURL/FXAPIKey configure the upstream exchange-rate source
	// consulted by internal/pricing.HTTPExchangeSource. Both may be left
	// unset, in which case FX/BTC enrichment is skipped entirely.
	FXAPIURL string `env:"FX_API_URL"`
	FXAPIKey string `env:"FX_API_KEY"`
}

// DSN returns the connection string to use, honoring the priority order.
func (d DBConfig) DSN() string {
	switch {
	case d.SupabaseSessionURL != "":
		return d.SupabaseSessionURL
	case d.SupabaseURL != "":
		return d.SupabaseURL
	default:
		return d.DatabaseURL
	}
}

// PerfConfig groups the legacy-snapshot and ingestion performance knobs.
type PerfConfig struct {
	SQLitePerf      bool `env:"SQLITE_PERF"       envDefault:"true"`
	SQLitePerfSafe  bool `env:"SQLITE_PERF_SAFE"  envDefault:"false"`
	FastIngest      bool `env:"FAST_INGEST"       envDefault:"true"`
	FastIngestOneConn bool `env:"FAST_INGEST_ONE_CONN" envDefault:"false"`
	FastIngestWorkMemMB int `env:"FAST_INGEST_WORK_MEM_MB" envDefault:"256"`
}

// ImportConfig groups the Legacy Snapshot Driver's resume/limit/batching knobs.
type ImportConfig struct {
	Resume                  bool   `env:"IMPORT_RESUME"                   envDefault:"true"`
	Reset                   string `env:"IMPORT_RESET"`
	CheckpointEvery         int    `env:"CHECKPOINT_EVERY"                envDefault:"1000"`
	ProductIDMin            int64  `env:"PRODUCT_ID_MIN"`
	VideoGameIDMin          int64  `env:"VIDEO_GAME_ID_MIN"`
	VideoGameLimitNew       int    `env:"VIDEO_GAME_LIMIT_NEW"`
	VideoGameSkipExistingOnly bool `env:"VIDEO_GAME_SKIP_EXISTING_ONLY"   envDefault:"false"`
	ProgressInterval        int    `env:"PROGRESS_INTERVAL"               envDefault:"500"`
	VideoGameUpdateChunk    int    `env:"VIDEO_GAME_UPDATE_CHUNK"         envDefault:"500"`
	LookupBatch             int    `env:"IMPORT_LOOKUP_BATCH"             envDefault:"512"`
	RayonDisabled           bool   `env:"IMPORT_RAYON_DISABLED"           envDefault:"false"`
	RayonThreads            int    `env:"IMPORT_RAYON_THREADS"`
	MediaOnly               bool   `env:"MEDIA_ONLY"                      envDefault:"false"`
	SkipTitles              bool   `env:"SKIP_TITLES"                     envDefault:"false"`
	ForceReimportMedia      bool   `env:"FORCE_REIMPORT_MEDIA"            envDefault:"false"`
	ForceReimportImages     bool   `env:"FORCE_REIMPORT_IMAGES"           envDefault:"false"`
	ForceReimportVideos     bool   `env:"FORCE_REIMPORT_VIDEOS"           envDefault:"false"`
	GBImagesLimit           int    `env:"GB_IMAGES_LIMIT"                 envDefault:"2000"`
	GBDirectSpecialized     bool   `env:"GB_DIRECT_SPECIALIZED"           envDefault:"false"`
	AllowURLSource          bool   `env:"IMPORTER_ALLOW_URL_SOURCE"       envDefault:"false"`
	VideoSourceFallback     string `env:"VIDEO_SOURCE_FALLBACK"           envDefault:"manual"`
	EnrichConcurrency       int    `env:"PS_ENRICH_CONCURRENCY"           envDefault:"6"`
}

// APIDriverConfig groups the persisted-query API Driver's contract.
type APIDriverConfig struct {
	Regions          string `env:"PS_STORE_REGIONS"`
	Bearer           string `env:"PS_STORE_BEARER"`
	APIKey           string `env:"PS_STORE_API_KEY"`
	RPS              int    `env:"PS_RPS"                   envDefault:"3"`
	RetryAttempts    int    `env:"PS_RETRY_ATTEMPTS"        envDefault:"5"`
	RetryBaseDelayMS int    `env:"PS_RETRY_BASE_DELAY_MS"   envDefault:"2000"`
	Cookie           string `env:"PS_STORE_COOKIE"`
	CookieFile       string `env:"PS_STORE_COOKIE_FILE"`
	IPv6Only         bool   `env:"PS_IPV6_ONLY"             envDefault:"true"`
	DisableIPv6      bool   `env:"PS_DISABLE_IPV6"          envDefault:"false"`
	Proxy            string `env:"PS_PROXY"`
	UserAgent        string `env:"PS_STORE_UA"`
	CacheDir         string `env:"PS_CACHE_DIR"             envDefault:"./.cache/psstore"`
	CacheTTLSecs     int    `env:"PS_CACHE_TTL_SECS"        envDefault:"7200"`
	TraceBodies      bool   `env:"PS_TRACE_BODIES"          envDefault:"false"`
	TraceBodyLen     int    `env:"PS_TRACE_BODY_LEN"        envDefault:"512"`
	PrintFullJSON    bool   `env:"PS_PRINT_FULL_JSON"       envDefault:"false"`
	LogZeroPrices    bool   `env:"PS_LOG_ZERO_PRICES"       envDefault:"false"`
	HashGlobal       string `env:"PS_HASH"`
	HashLegacySHA256 string `env:"PSSTORE_SHA256"`
	HashesFile       string `env:"PS_HASHES_FILE"           envDefault:"hashes.json"`
	CollectionFile   string `env:"PS_COLLECTION_FILE"       envDefault:"psstore_api_collection.json"`
	DriftFile        string `env:"PS_DRIFT_FILE"            envDefault:"hashes.observed.json"`
	EnrichConcurrency int   `env:"PS_ENRICH_CONCURRENCY"    envDefault:"6"`
}

// StrictnessConfig groups the Verifier's fatal-vs-warning overrides from
// spec.md §6/§7 — every flag here relaxes an invariant check that is fatal
// by default, never the reverse: AllowUnlinkedSourceItems reports the
// title-linkage violation as non-fatal, and AllowCountryOnlyJurisdictions
// skips the jurisdiction-compat check entirely.
type StrictnessConfig struct {
	AllowUnlinkedSourceItems    bool `env:"GC_ALLOW_UNLINKED_SOURCE_ITEMS"       envDefault:"false"`
	AllowCountryOnlyJurisdictions bool `env:"GC_ALLOW_COUNTRY_ONLY_JURISDICTIONS" envDefault:"false"`
}

// # Configuration Loading

var validate = validator.New()

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.DB.DSN() == "" {
		return nil, fmt.Errorf("config: one of SUPABASE_DB_SESSION_URL, SUPABASE_DB_URL, or DATABASE_URL is required")
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the process is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the process is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
