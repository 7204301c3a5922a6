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
	"time"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/wrds"
	"github.com/rs/zerolog"
)

// CRSP reports shrout in thousands of shares
const crspShroutUnit = 1000

const crspQuery = `SELECT
	dsf.date,
	dsf.cusip AS cusip8,
	ssih.cusip9,
	dsf.shrout
FROM crspq.dsf AS dsf
LEFT JOIN (
	SELECT permno, permco, cusip, cusip9 FROM crspq.stksecurityinfohist
	WHERE cusip9 IS NOT NULL
	GROUP BY permno, permco, cusip, cusip9
) AS ssih
	ON dsf.permno = ssih.permno AND dsf.permco = ssih.permco AND dsf.cusip = ssih.cusip
WHERE dsf.date BETWEEN $1 AND $2`

type crspRow struct {
	Date   time.Time `db:"date"`
	CUSIP8 *string   `db:"cusip8"`
	CUSIP9 *string   `db:"cusip9"`
	Shrout *float64  `db:"shrout"`
}

type CRSP struct{}

func (crsp *CRSP) Name() string {
	return "CRSP"
}

func (crsp *CRSP) Description() string {
	return `The Center for Research in Security Prices maintains daily stock files for every security listed on the major US exchanges. The pipeline reads shares outstanding and links it to Markit through the 9-digit CUSIP from the security history table.`
}

func (crsp *CRSP) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"Daily Shares Outstanding": {
			Name:        "Daily Shares Outstanding",
			Description: "Shares outstanding from crspq.dsf, forward-filled to every calendar day.",
			Artifact:    data.CRSPKey,
			Tables:      []string{"crspq.dsf", "crspq.stksecurityinfohist"},
			DateRange:   sinceInception(1925),
		},
	}
}

// Load returns the cached CRSP artifact or pulls it for dateRange
func (crsp *CRSP) Load(ctx context.Context, conn wrds.Conn, store *cache.Store, dateRange data.DateRange, opts cache.Options) ([]*data.SharesOutstanding, error) {
	return cache.Memoize(ctx, store, data.CRSPKey, opts, dateRange, func(ctx context.Context) ([]*data.SharesOutstanding, error) {
		return crsp.Pull(ctx, conn, dateRange)
	})
}

// Pull queries shares outstanding for dateRange and densifies the result
func (crsp *CRSP) Pull(ctx context.Context, conn wrds.Conn, dateRange data.DateRange) ([]*data.SharesOutstanding, error) {
	logger := zerolog.Ctx(ctx)

	rows := []*crspRow{}
	if err := conn.Select(ctx, &rows, crspQuery, dateRange.StartTime(), dateRange.EndTime()); err != nil {
		return nil, err
	}

	records := make([]*data.SharesOutstanding, 0, len(rows))
	for _, row := range rows {
		if rec, ok := row.normalize(); ok {
			records = append(records, rec)
		}
	}

	logger.Debug().Int("NumRows", len(rows)).Int("Dropped", len(rows)-len(records)).Msg("normalized crsp rows")

	dense := data.Densify(records)
	logger.Info().Int("NumRecords", len(dense)).Str("DateRange", dateRange.String()).Msg("pulled crsp shares outstanding")

	return dense, nil
}

func (row *crspRow) normalize() (*data.SharesOutstanding, bool) {
	if row.CUSIP9 == nil {
		return nil, false
	}

	cusip8, ok := data.CUSIP8FromCUSIP9(*row.CUSIP9)
	if !ok {
		return nil, false
	}

	rec := &data.SharesOutstanding{
		Date:   data.DayFromTime(row.Date),
		CUSIP8: cusip8,
		CUSIP9: *row.CUSIP9,
	}

	if row.Shrout != nil {
		rec.Shrout = data.Float(*row.Shrout * crspShroutUnit)
	}

	return rec, true
}
