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
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/wrds"
	"github.com/rs/zerolog"
)

// Markit stores each year of american equity analytics in its own table
const markitTableFormat = "markit_msf_analytics_eqty_amer.amereqty%s"

const markitQueryFormat = `SELECT
	msf.datadate,
	msf.cusip,
	msf.isin,
	msf.instrumentname,
	msf.marketarea,
	msf.indicativefee,
	msf.utilisation,
	msf.shortloanquantity,
	msf.quantityonloan,
	msf.lendablequantity,
	msf.lenderconcentration,
	msf.borrowerconcentration,
	msf.inventoryconcentration
FROM %s AS msf
WHERE msf.datadate BETWEEN $1 AND $2`

type markitRow struct {
	DataDate               time.Time `db:"datadate"`
	CUSIP                  *string   `db:"cusip"`
	ISIN                   *string   `db:"isin"`
	InstrumentName         *string   `db:"instrumentname"`
	MarketArea             *string   `db:"marketarea"`
	IndicativeFee          *float64  `db:"indicativefee"`
	Utilisation            *float64  `db:"utilisation"`
	ShortLoanQuantity      *float64  `db:"shortloanquantity"`
	QuantityOnLoan         *float64  `db:"quantityonloan"`
	LendableQuantity       *float64  `db:"lendablequantity"`
	LenderConcentration    *float64  `db:"lenderconcentration"`
	BorrowerConcentration  *float64  `db:"borrowerconcentration"`
	InventoryConcentration *float64  `db:"inventoryconcentration"`
}

type Markit struct{}

func (markit *Markit) Name() string {
	return "Markit"
}

func (markit *Markit) Description() string {
	return `IHS Markit Securities Finance tracks the equity lending market: lendable inventory, quantity on loan, utilisation and indicative borrow fees for each security on each trading day.`
}

func (markit *Markit) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"American Equities": {
			Name:        "American Equities",
			Description: "Daily lending analytics, one table per calendar year.",
			Artifact:    data.MarkitKey,
			Tables:      []string{fmt.Sprintf(markitTableFormat, "YYYY")},
			DateRange:   sinceInception(2006),
		},
	}
}

// Load returns the cached Markit artifact or pulls it for dateRange
func (markit *Markit) Load(ctx context.Context, conn wrds.Conn, store *cache.Store, dateRange data.DateRange, opts cache.Options) ([]*data.LendingRecord, error) {
	return cache.Memoize(ctx, store, data.MarkitKey, opts, dateRange, func(ctx context.Context) ([]*data.LendingRecord, error) {
		return markit.Pull(ctx, conn, dateRange)
	})
}

// Pull reads every yearly table overlapping dateRange and concatenates the
// normalized pages. Rows whose CUSIP cannot be derived are dropped.
func (markit *Markit) Pull(ctx context.Context, conn wrds.Conn, dateRange data.DateRange) ([]*data.LendingRecord, error) {
	logger := zerolog.Ctx(ctx)

	partitions := wrds.YearPartitions(dateRange.StartTime(), dateRange.EndTime())
	pages, err := wrds.FetchPartitioned(ctx, partitions, func(ctx context.Context, partition wrds.Partition) ([]*data.LendingRecord, error) {
		rows := []*markitRow{}
		query := fmt.Sprintf(markitQueryFormat, fmt.Sprintf(markitTableFormat, partition.Label))
		if err := conn.Select(ctx, &rows, query, partition.Start, partition.End); err != nil {
			return nil, err
		}

		records := make([]*data.LendingRecord, 0, len(rows))
		for _, row := range rows {
			if rec, ok := row.normalize(); ok {
				records = append(records, rec)
			}
		}

		logger.Debug().Str("Partition", partition.Label).Int("NumRows", len(rows)).
			Int("Dropped", len(rows)-len(records)).Msg("normalized markit rows")

		return records, nil
	})
	if err != nil {
		return nil, err
	}

	records := wrds.Concat(pages)
	logger.Info().Int("NumRecords", len(records)).Str("DateRange", dateRange.String()).Msg("pulled markit lending data")

	return records, nil
}

func (row *markitRow) normalize() (*data.LendingRecord, bool) {
	cusip8, ok := data.MarkitCUSIP8(row.CUSIP, row.ISIN)
	if !ok {
		return nil, false
	}

	return &data.LendingRecord{
		Date:                   data.DayFromTime(row.DataDate),
		CUSIP8:                 cusip8,
		CUSIP:                  row.CUSIP,
		ISIN:                   row.ISIN,
		InstrumentName:         row.InstrumentName,
		MarketArea:             row.MarketArea,
		IndicativeFee:          row.IndicativeFee,
		Utilisation:            row.Utilisation,
		ShortLoanQuantity:      row.ShortLoanQuantity,
		QuantityOnLoan:         row.QuantityOnLoan,
		LendableQuantity:       row.LendableQuantity,
		LenderConcentration:    row.LenderConcentration,
		BorrowerConcentration:  row.BorrowerConcentration,
		InventoryConcentration: row.InventoryConcentration,
	}, true
}
