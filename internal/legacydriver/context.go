// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package legacydriver implements the Legacy Snapshot Driver: a streaming,
resumable importer that reads a single-file SQLite export of the
Laravel-era catalog and writes it into the target Postgres schema through
the Upsert Engine and the Media Ingestor.

Every stage is gated by a durable checkpoint so a killed or restarted run
picks up exactly where it left off, and an IMPORT_RESET override list lets
an operator force specific stages to re-run.
*/
package legacydriver

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gamecatalog/internal/catalog/entitycache"
	"github.com/taibuivan/gamecatalog/internal/catalog/schema"
	"github.com/taibuivan/gamecatalog/internal/catalog/upsert"
	"github.com/taibuivan/gamecatalog/internal/media"
	"github.com/taibuivan/gamecatalog/internal/platform/config"
)

// Context is the single state object threaded through every stage: the
// target Postgres pool, the source SQLite snapshot handle, the Upsert
// Engine and Media Ingestor built on top of the pool, the Provider Entity
// Cache, the checkpoint store, and a handful of prefilled in-memory maps
// that would otherwise be re-queried per row.
type Context struct {
	Pool     *pgxpool.Pool
	Snapshot *sql.DB
	Schema   *schema.Cache
	Shape    *schema.Shape
	Engine   *upsert.Engine
	Media    *media.Ingestor
	Entities *entitycache.Cache
	Checkpoints *CheckpointStore
	Import   config.ImportConfig
	Log      *slog.Logger

	stageTimesMu sync.Mutex
	stageTimes   map[string]time.Duration

	// existingSlugs memoizes every product/video_game slug already assigned,
	// so UniqueSlug never needs a per-row existence query.
	existingSlugsMu sync.Mutex
	existingSlugs   map[string]struct{}

	// platformByLegacy maps a legacy platform id (from product_platform_links)
	// to the platform id resolved in the target schema.
	platformByLegacyMu sync.Mutex
	platformByLegacy   map[int64]int64

	// productPlatforms maps a legacy product id to the set of legacy
	// platform ids linked to it, built once in the product_platform_links
	// stage and consulted during the video_games stage.
	productPlatformsMu sync.Mutex
	productPlatforms   map[int64][]int64

	// productIDByLegacy maps a legacy product id to its resolved Postgres
	// products.id, populated by the products stage and consulted by the
	// video_games stage.
	productIDByLegacyMu sync.Mutex
	productIDByLegacy   map[int64]int64

	// videoGamesByLegacy maps a legacy video_games.id to every resolved
	// video_games.id it expanded into (one per linked platform), populated
	// by the video_games stage and consulted by the media stage.
	videoGamesByLegacyMu sync.Mutex
	videoGamesByLegacy   map[int64][]int64
}

// New constructs a Context. entities is typically fresh per run.
func New(
	pool *pgxpool.Pool,
	snapshot *sql.DB,
	schemaCache *schema.Cache,
	shape *schema.Shape,
	engine *upsert.Engine,
	mediaIngestor *media.Ingestor,
	entities *entitycache.Cache,
	importCfg config.ImportConfig,
	log *slog.Logger,
) *Context {
	return &Context{
		Pool:             pool,
		Snapshot:         snapshot,
		Schema:           schemaCache,
		Shape:            shape,
		Engine:           engine,
		Media:            mediaIngestor,
		Entities:         entities,
		Checkpoints:      NewCheckpointStore(pool),
		Import:           importCfg,
		Log:              log,
		stageTimes:       make(map[string]time.Duration),
		existingSlugs:     make(map[string]struct{}),
		platformByLegacy:  make(map[int64]int64),
		productPlatforms:   make(map[int64][]int64),
		productIDByLegacy:  make(map[int64]int64),
		videoGamesByLegacy: make(map[int64][]int64),
	}
}

// recordStageTime is called once per stage by Run, for the post-run summary.
func (c *Context) recordStageTime(stage string, d time.Duration) {
	c.stageTimesMu.Lock()
	defer c.stageTimesMu.Unlock()
	c.stageTimes[stage] = d
}

// rememberSlug marks slug as taken, for UniqueSlug collision checks across
// the whole run (not just within one stage's batch).
func (c *Context) rememberSlug(slug string) {
	c.existingSlugsMu.Lock()
	defer c.existingSlugsMu.Unlock()
	c.existingSlugs[slug] = struct{}{}
}

func (c *Context) slugTaken(slug string) bool {
	c.existingSlugsMu.Lock()
	defer c.existingSlugsMu.Unlock()
	_, ok := c.existingSlugs[slug]
	return ok
}

func (c *Context) putPlatformMapping(legacyPlatformID, resolvedID int64) {
	c.platformByLegacyMu.Lock()
	defer c.platformByLegacyMu.Unlock()
	c.platformByLegacy[legacyPlatformID] = resolvedID
}

func (c *Context) resolvedPlatformID(legacyPlatformID int64) (int64, bool) {
	c.platformByLegacyMu.Lock()
	defer c.platformByLegacyMu.Unlock()
	id, ok := c.platformByLegacy[legacyPlatformID]
	return id, ok
}

func (c *Context) putProductPlatforms(legacyProductID int64, legacyPlatformIDs []int64) {
	c.productPlatformsMu.Lock()
	defer c.productPlatformsMu.Unlock()
	c.productPlatforms[legacyProductID] = legacyPlatformIDs
}

func (c *Context) platformsForProduct(legacyProductID int64) []int64 {
	c.productPlatformsMu.Lock()
	defer c.productPlatformsMu.Unlock()
	return c.productPlatforms[legacyProductID]
}

func (c *Context) putProductID(legacyProductID, resolvedID int64) {
	c.productIDByLegacyMu.Lock()
	defer c.productIDByLegacyMu.Unlock()
	c.productIDByLegacy[legacyProductID] = resolvedID
}

func (c *Context) resolvedProductID(legacyProductID int64) (int64, bool) {
	c.productIDByLegacyMu.Lock()
	defer c.productIDByLegacyMu.Unlock()
	id, ok := c.productIDByLegacy[legacyProductID]
	return id, ok
}

func (c *Context) addVideoGameMapping(legacyVideoGameID, resolvedID int64) {
	c.videoGamesByLegacyMu.Lock()
	defer c.videoGamesByLegacyMu.Unlock()
	c.videoGamesByLegacy[legacyVideoGameID] = append(c.videoGamesByLegacy[legacyVideoGameID], resolvedID)
}

func (c *Context) videoGamesForLegacy(legacyVideoGameID int64) []int64 {
	c.videoGamesByLegacyMu.Lock()
	defer c.videoGamesByLegacyMu.Unlock()
	return c.videoGamesByLegacy[legacyVideoGameID]
}
