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
package report

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/stats"
)

// WriteCSV writes one line per group of the unit
func WriteCSV(w io.Writer, unit *stats.Unit) error {
	rows := unit.Stats
	if rows == nil {
		rows = []*data.DescriptiveStats{}
	}

	return gocsv.Marshal(rows, w)
}

// SeriesFor extracts the lending indicators of the requested securities
// from the panel. Securities may be given as CUSIP8 or CUSIP9; points keep
// the panel order.
func SeriesFor(panel []*data.PanelRecord, cusips []string) []*data.SeriesPoint {
	wanted := make(map[string]bool, len(cusips))
	for _, cusip := range cusips {
		if cusip8, ok := data.NormalizeCUSIP(cusip); ok {
			wanted[cusip8] = true
		}
	}

	points := make([]*data.SeriesPoint, 0)
	for _, row := range panel {
		if !wanted[row.CUSIP8] {
			continue
		}

		name := ""
		if row.InstrumentName != nil {
			name = *row.InstrumentName
		}

		points = append(points, &data.SeriesPoint{
			Date:                 data.FormatDay(row.Date),
			CUSIP8:               row.CUSIP8,
			InstrumentName:       name,
			ShortInterestRatio:   row.ShortInterestRatio,
			LoanSupplyRatio:      row.LoanSupplyRatio,
			LoanUtilisationRatio: row.LoanUtilisationRatio,
			LoanFee:              row.LoanFee,
		})
	}

	return points
}

// WriteSeries writes series points as CSV
func WriteSeries(w io.Writer, points []*data.SeriesPoint) error {
	return gocsv.Marshal(points, w)
}
