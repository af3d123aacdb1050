// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// stage names, in run order. Each is gated by its own "<name>:done"
// checkpoint; stages that resume by a numeric cursor (products,
// video_games, gb_images) additionally checkpoint under their own source
// key during the run, independent of the done sentinel.
const (
	StageProviders  = "video_game_sources"
	StageRefdata    = "refdata"
	StageLinks      = "product_platform_links"
	StageProducts   = "products"
	StageVideoGames = "video_games"
	StageMedia      = "game_media"
	StageDedupe     = "dedupe_all"
)

type stage struct {
	name string
	run  func(ctx context.Context) error
}

func (c *Context) stages() []stage {
	return []stage{
		{StageProviders, c.runProvidersStage},
		{StageRefdata, c.runRefdataStage},
		{StageLinks, c.runLinksStage},
		{StageProducts, c.runProductsStage},
		{StageVideoGames, c.runVideoGamesStage},
		{StageMedia, c.runMediaStage},
		{StageDedupe, c.runDedupeStage},
	}
}

// Run executes every stage in order, skipping any whose done sentinel is
// already set (unless named in resetStages), and logs a per-stage duration
// summary at the end.
func (c *Context) Run(ctx context.Context, resetStages string) error {
	if err := c.Checkpoints.EnsureTable(ctx); err != nil {
		return fmt.Errorf("legacydriver: ensure checkpoint table: %w", err)
	}

	reset := splitCSV(resetStages)

	for _, st := range c.stages() {
		done, err := c.Checkpoints.IsStageDone(ctx, st.name, reset)
		if err != nil {
			return fmt.Errorf("legacydriver: check stage %s: %w", st.name, err)
		}
		if done {
			c.Log.Info("stage_skipped_already_done", slog.String("stage", st.name))
			continue
		}

		c.Log.Info("stage_starting", slog.String("stage", st.name))
		start := time.Now()
		err = st.run(ctx)
		elapsed := time.Since(start)
		c.recordStageTime(st.name, elapsed)

		if err != nil {
			c.Log.Error("stage_failed", slog.String("stage", st.name), slog.Duration("elapsed", elapsed), slog.Any("error", err))
			return fmt.Errorf("legacydriver: stage %s: %w", st.name, err)
		}

		if err := c.Checkpoints.MarkStageDone(ctx, st.name); err != nil {
			return fmt.Errorf("legacydriver: mark stage %s done: %w", st.name, err)
		}
		c.Log.Info("stage_complete", slog.String("stage", st.name), slog.Duration("elapsed", elapsed))
	}

	c.logSummary()
	return nil
}

func (c *Context) logSummary() {
	c.stageTimesMu.Lock()
	defer c.stageTimesMu.Unlock()

	var total time.Duration
	for _, d := range c.stageTimes {
		total += d
	}
	if total == 0 {
		return
	}
	for _, st := range c.stages() {
		d, ok := c.stageTimes[st.name]
		if !ok {
			continue
		}
		pct := float64(d) / float64(total) * 100
		c.Log.Info("stage_summary",
			slog.String("stage", st.name),
			slog.Duration("elapsed", d),
			slog.String("pct_of_total", fmt.Sprintf("%.1f%%", pct)),
		)
	}
}

func splitCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
