// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/config"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/merge"
	"github.com/penny-vault/pvesg/provider"
	"github.com/penny-vault/pvesg/report"
	"github.com/penny-vault/pvesg/stats"
	"github.com/penny-vault/pvesg/wrds"
	"github.com/rs/zerolog"
)

// Pipeline runs the stages of the study against one configuration. Loader
// and merge stages share Options; statistics are always recomputed. Each
// stage is evaluated at most once per Pipeline.
type Pipeline struct {
	Config  *config.Config
	Conn    wrds.Conn
	Options cache.Options
	RunID   uuid.UUID

	pulled     *cache.Store
	statistics *cache.Store

	crsp    memo[data.SharesOutstanding]
	markit  memo[data.LendingRecord]
	reprisk memo[data.ESGRecord]
	ratios  memo[data.PanelRecord]
	merged  memo[data.PanelRecord]
}

type memo[T any] struct {
	rows []*T
	done bool
}

func (m *memo[T]) get(ctx context.Context, load func(context.Context) ([]*T, error)) ([]*T, error) {
	if m.done {
		return m.rows, nil
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	m.rows = rows
	m.done = true
	return rows, nil
}

func New(cfg *config.Config, conn wrds.Conn, opts cache.Options) *Pipeline {
	runID := uuid.New()
	return &Pipeline{
		Config:     cfg,
		Conn:       conn,
		Options:    opts,
		RunID:      runID,
		pulled:     cache.NewStore(cfg.PulledDir(), cfg.Cache.IgnoreDateRange, runID),
		statistics: cache.NewStore(cfg.StatsDir(), cfg.Cache.IgnoreDateRange, runID),
	}
}

// PulledStore holds the source and merge artifacts
func (pipeline *Pipeline) PulledStore() *cache.Store {
	return pipeline.pulled
}

// StatsStore holds one artifact per statistics unit
func (pipeline *Pipeline) StatsStore() *cache.Store {
	return pipeline.statistics
}

func (pipeline *Pipeline) PullCRSP(ctx context.Context) ([]*data.SharesOutstanding, error) {
	return pipeline.crsp.get(ctx, func(ctx context.Context) ([]*data.SharesOutstanding, error) {
		return (&provider.CRSP{}).Load(ctx, pipeline.Conn, pipeline.pulled, pipeline.Config.DateRange(), pipeline.Options)
	})
}

func (pipeline *Pipeline) PullMarkit(ctx context.Context) ([]*data.LendingRecord, error) {
	return pipeline.markit.get(ctx, func(ctx context.Context) ([]*data.LendingRecord, error) {
		return (&provider.Markit{}).Load(ctx, pipeline.Conn, pipeline.pulled, pipeline.Config.DateRange(), pipeline.Options)
	})
}

func (pipeline *Pipeline) PullRepRisk(ctx context.Context) ([]*data.ESGRecord, error) {
	return pipeline.reprisk.get(ctx, func(ctx context.Context) ([]*data.ESGRecord, error) {
		return (&provider.RepRisk{}).Load(ctx, pipeline.Conn, pipeline.pulled, pipeline.Config.DateRange(), pipeline.Options)
	})
}

// MergeMarkitCRSP returns the lending panel with its indicators
func (pipeline *Pipeline) MergeMarkitCRSP(ctx context.Context) ([]*data.PanelRecord, error) {
	return pipeline.ratios.get(ctx, pipeline.mergeMarkitCRSP)
}

func (pipeline *Pipeline) mergeMarkitCRSP(ctx context.Context) ([]*data.PanelRecord, error) {
	return cache.Memoize(ctx, pipeline.pulled, data.MarkitCRSPRatiosKey, pipeline.Options, pipeline.Config.DateRange(),
		func(ctx context.Context) ([]*data.PanelRecord, error) {
			markit, err := pipeline.PullMarkit(ctx)
			if err != nil {
				return nil, err
			}

			crsp, err := pipeline.PullCRSP(ctx)
			if err != nil {
				return nil, err
			}

			return merge.MarkitCRSP(ctx, markit, crsp), nil
		})
}

// MergeAll returns the final analysis panel
func (pipeline *Pipeline) MergeAll(ctx context.Context) ([]*data.PanelRecord, error) {
	return pipeline.merged.get(ctx, pipeline.mergeAll)
}

func (pipeline *Pipeline) mergeAll(ctx context.Context) ([]*data.PanelRecord, error) {
	return cache.Memoize(ctx, pipeline.pulled, data.MergedDataKey, pipeline.Options, pipeline.Config.DateRange(),
		func(ctx context.Context) ([]*data.PanelRecord, error) {
			panel, err := pipeline.MergeMarkitCRSP(ctx)
			if err != nil {
				return nil, err
			}

			reprisk, err := pipeline.PullRepRisk(ctx)
			if err != nil {
				return nil, err
			}

			return merge.WithRepRisk(ctx, panel, reprisk), nil
		})
}

// ComputeStats evaluates every statistics unit over the merged panel and
// overwrites the stats artifacts
func (pipeline *Pipeline) ComputeStats(ctx context.Context) ([]*stats.Unit, error) {
	panel, err := pipeline.MergeAll(ctx)
	if err != nil {
		return nil, err
	}

	units := stats.Compute(ctx, panel)
	if err := stats.Save(ctx, pipeline.statistics, pipeline.Config.DateRange(), units); err != nil {
		return nil, err
	}

	return units, nil
}

// RenderTables reads the stats artifacts and writes the rendered tables.
// Every unit must already exist.
func (pipeline *Pipeline) RenderTables(ctx context.Context) error {
	units, err := stats.Load(ctx, pipeline.statistics)
	if err != nil {
		return err
	}

	return report.WriteTables(ctx, pipeline.Config.TablesDir(), units)
}

// ExportSeries writes the daily lending indicators of the given securities
func (pipeline *Pipeline) ExportSeries(ctx context.Context, w io.Writer, cusips []string) (int, error) {
	panel, err := pipeline.MergeAll(ctx)
	if err != nil {
		return 0, err
	}

	points := report.SeriesFor(panel, cusips)
	if err := report.WriteSeries(w, points); err != nil {
		return 0, err
	}

	return len(points), nil
}

// StageResult records the outcome of one stage of a run
type StageResult struct {
	Name    string
	NumRows int
	Elapsed time.Duration
}

func (result StageResult) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Stage", result.Name)
	e.Int("NumRows", result.NumRows)
	e.Dur("Elapsed", result.Elapsed)
}

// RunSummary collects the results of a complete run
type RunSummary struct {
	RunID     uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Stages    []StageResult
}

func (summary *RunSummary) record(name string, numRows int, start time.Time) StageResult {
	result := StageResult{Name: name, NumRows: numRows, Elapsed: time.Since(start)}
	summary.Stages = append(summary.Stages, result)
	return result
}

// Run executes every stage in dependency order. Each stage completes before
// the next begins; the first error stops the run.
func (pipeline *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	logger := zerolog.Ctx(ctx)
	summary := &RunSummary{RunID: pipeline.RunID, StartTime: time.Now()}
	defer func() {
		summary.EndTime = time.Now()
	}()

	if err := pipeline.Config.EnsureDirs(); err != nil {
		return summary, err
	}

	start := time.Now()
	crsp, err := pipeline.PullCRSP(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record(data.CRSPKey, len(crsp), start)).Msg("stage complete")

	start = time.Now()
	markit, err := pipeline.PullMarkit(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record(data.MarkitKey, len(markit), start)).Msg("stage complete")

	start = time.Now()
	reprisk, err := pipeline.PullRepRisk(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record(data.RepRiskKey, len(reprisk), start)).Msg("stage complete")

	start = time.Now()
	ratios, err := pipeline.MergeMarkitCRSP(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record(data.MarkitCRSPRatiosKey, len(ratios), start)).Msg("stage complete")

	start = time.Now()
	merged, err := pipeline.MergeAll(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record(data.MergedDataKey, len(merged), start)).Msg("stage complete")

	start = time.Now()
	units, err := pipeline.ComputeStats(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record("stats", len(units), start)).Msg("stage complete")

	start = time.Now()
	if err := pipeline.RenderTables(ctx); err != nil {
		return summary, err
	}
	logger.Info().Object("Result", summary.record("tables", len(units), start)).Msg("stage complete")

	return summary, nil
}
