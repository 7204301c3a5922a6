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
package library

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/stats"
	"github.com/rs/zerolog"
)

var (
	panelColumns = []string{
		"run_id", "event_date", "cusip8", "instrument_name", "shrout",
		"short_interest_ratio", "loan_supply_ratio", "loan_utilisation_ratio", "loan_fee",
		"reprisk_id", "current_rri", "reprisk_rating", "story_id",
		"severity", "reach", "novelty", "environment", "social", "governance",
	}

	statsColumns = []string{
		"run_id", "unit", "indicator", "dimension", "horizon", "grp", "count",
		"mean", "std", "min", "p10", "p25", "p50", "p75", "p90", "max",
	}
)

// Library is a PostgreSQL database that collects the exported results of
// pipeline runs
type Library struct {
	DBUrl string `toml:"db_url"`
	Name  string `toml:"-"`
	Owner string `toml:"-"`

	Pool *pgxpool.Pool `toml:"-"`
}

// Run is one exported pipeline run
type Run struct {
	ID         uuid.UUID `db:"id"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	PanelRows  int64     `db:"panel_rows"`
	StatsUnits int       `db:"stats_units"`
	ExportedOn time.Time `db:"exported_on"`
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library LIMIT 1").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		pool.Close()
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// Runs returns every exported run, most recent first
func (myLibrary *Library) Runs(ctx context.Context) ([]*Run, error) {
	var runs []*Run
	err := pgxscan.Select(ctx, myLibrary.Pool, &runs,
		`SELECT id, start_date, end_date, panel_rows, stats_units, exported_on FROM runs ORDER BY exported_on DESC`)
	return runs, err
}

// LastUpdated returns the time of the most recent export
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastUpdated time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(exported_on), '0001-01-01'::timestamptz) FROM runs").Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}

// TotalRecords returns the number of panel rows across every run
func (myLibrary *Library) TotalRecords(ctx context.Context) (int64, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var count int64
	err = conn.QueryRow(ctx, "SELECT coalesce(sum(panel_rows), 0) FROM runs").Scan(&count)
	return count, err
}

// TotalSecurities returns the number of distinct securities in the panel
func (myLibrary *Library) TotalSecurities(ctx context.Context) (int64, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var count int64
	err = conn.QueryRow(ctx, "SELECT count(DISTINCT cusip8) FROM lending_panel").Scan(&count)
	return count, err
}

// SaveRun stores the analysis panel and statistics of a run in a single
// transaction
func (myLibrary *Library) SaveRun(ctx context.Context, runID uuid.UUID, dateRange data.DateRange,
	panel []*data.PanelRecord, units []*stats.Unit) error {
	logger := zerolog.Ctx(ctx)

	tx, err := myLibrary.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `INSERT INTO runs (id, start_date, end_date, panel_rows, stats_units) VALUES ($1, $2, $3, $4, $5)`,
		runID, dateRange.StartTime(), dateRange.EndTime(), len(panel), len(units)); err != nil {
		return err
	}

	numPanel, err := tx.CopyFrom(ctx, pgx.Identifier{"lending_panel"}, panelColumns,
		pgx.CopyFromSlice(len(panel), func(idx int) ([]any, error) {
			return PanelValues(runID, panel[idx]), nil
		}))
	if err != nil {
		return err
	}

	statsRows := StatsValues(runID, units)
	numStats, err := tx.CopyFrom(ctx, pgx.Identifier{"descriptive_stats"}, statsColumns, pgx.CopyFromRows(statsRows))
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info().Str("RunID", runID.String()).Int64("PanelRows", numPanel).Int64("StatsRows", numStats).Msg("exported run to library")
	return nil
}

// PanelValues returns the lending_panel column values of a panel row
func PanelValues(runID uuid.UUID, row *data.PanelRecord) []any {
	return []any{
		runID, data.TimeFromDay(row.Date), row.CUSIP8, row.InstrumentName, row.Shrout,
		row.ShortInterestRatio, row.LoanSupplyRatio, row.LoanUtilisationRatio, row.LoanFee,
		row.RepRiskID, row.CurrentRRI, row.RepRiskRating, row.StoryID,
		row.Severity, row.Reach, row.Novelty, row.Environment, row.Social, row.Governance,
	}
}

// StatsValues flattens statistics units into descriptive_stats rows
func StatsValues(runID uuid.UUID, units []*stats.Unit) [][]any {
	rows := make([][]any, 0, len(units)*2)
	for _, unit := range units {
		for _, summary := range unit.Stats {
			rows = append(rows, []any{
				runID, unit.Name(), string(unit.Indicator), string(unit.Dimension), unit.Horizon, summary.Group, summary.Count,
				summary.Mean, summary.Std, summary.Min, summary.P10, summary.P25, summary.P50, summary.P75, summary.P90, summary.Max,
			})
		}
	}

	return rows
}
