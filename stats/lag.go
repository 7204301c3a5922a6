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
package stats

import (
	"sort"

	"github.com/penny-vault/pvesg/data"
)

// Column extracts a numeric value from a row; nil is a missing value
type Column[T any] func(T) *float64

// WithLag shifts each column within every entity. Rows are grouped by id
// and ordered by date; the value at position i of an entity is taken from
// position i-lag of the same entity, so a negative lag looks ahead. The
// shift counts recorded rows, not calendar days. Positions past either end
// are missing.
//
// The result is aligned with rows: out[r][c] is the shifted value of
// columns[c] for rows[r].
func WithLag[T any](rows []T, id func(T) string, date func(T) int32, columns []Column[T], lag int) [][]*float64 {
	entities := make(map[string][]int)
	order := make([]string, 0)
	for idx, row := range rows {
		key := id(row)
		if _, ok := entities[key]; !ok {
			order = append(order, key)
		}
		entities[key] = append(entities[key], idx)
	}

	out := make([][]*float64, len(rows))
	for _, key := range order {
		positions := entities[key]
		sort.SliceStable(positions, func(i, j int) bool {
			return date(rows[positions[i]]) < date(rows[positions[j]])
		})

		for pos, rowIdx := range positions {
			shifted := make([]*float64, len(columns))
			src := pos - lag
			if src >= 0 && src < len(positions) {
				for colIdx, column := range columns {
					shifted[colIdx] = column(rows[positions[src]])
				}
			}
			out[rowIdx] = shifted
		}
	}

	return out
}

// ChangeRecord pairs a panel row with the change of each lending indicator
// over a horizon. Indicator returns the change rather than the level.
type ChangeRecord struct {
	*data.PanelRecord

	Horizon int
	changes map[data.Indicator]*float64
}

func (change *ChangeRecord) Indicator(indicator data.Indicator) *float64 {
	return change.changes[indicator]
}

func indicatorColumns() []Column[*data.PanelRecord] {
	columns := make([]Column[*data.PanelRecord], len(data.Indicators))
	for idx, indicator := range data.Indicators {
		columns[idx] = func(row *data.PanelRecord) *float64 {
			return row.Indicator(indicator)
		}
	}

	return columns
}

// Changes computes, for every indicator, the value horizon recorded rows
// ahead within the same security minus the current value. The change is
// missing when either operand is.
func Changes(panel []*data.PanelRecord, horizon int) []*ChangeRecord {
	ahead := WithLag(panel,
		func(row *data.PanelRecord) string { return row.CUSIP8 },
		func(row *data.PanelRecord) int32 { return row.Date },
		indicatorColumns(),
		-horizon,
	)

	out := make([]*ChangeRecord, len(panel))
	for idx, row := range panel {
		changes := make(map[data.Indicator]*float64, len(data.Indicators))
		for colIdx, indicator := range data.Indicators {
			current := row.Indicator(indicator)
			future := ahead[idx][colIdx]
			if current != nil && future != nil {
				changes[indicator] = data.Float(*future - *current)
			}
		}

		out[idx] = &ChangeRecord{
			PanelRecord: row,
			Horizon:     horizon,
			changes:     changes,
		}
	}

	return out
}
