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
package data

import (
	"sort"

	"github.com/rs/zerolog"
)

// SharesOutstanding is a daily shares-outstanding observation from CRSP.
// Shrout is a raw share count.
type SharesOutstanding struct {
	Date   int32    `json:"date" parquet:"name=date, type=INT32, convertedtype=DATE"`
	CUSIP8 string   `json:"cusip8" parquet:"name=cusip8, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CUSIP9 string   `json:"cusip9" parquet:"name=cusip9, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Shrout *float64 `json:"shrout" parquet:"name=shrout, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func (shares *SharesOutstanding) Key() Key {
	return Key{CUSIP8: shares.CUSIP8, Date: shares.Date}
}

func (shares *SharesOutstanding) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CUSIP8", shares.CUSIP8)
	e.Str("CUSIP9", shares.CUSIP9)
	e.Str("Date", FormatDay(shares.Date))
	if shares.Shrout != nil {
		e.Float64("Shrout", *shares.Shrout)
	}
}

// Densify expands each security's observations to one row per calendar day
// between its first and last observation. Each day carries the most recent
// non-missing shares outstanding value seen on or before that day; when a
// security reports more than once on a day the last report wins.
func Densify(records []*SharesOutstanding) []*SharesOutstanding {
	bySecurity := make(map[string][]*SharesOutstanding)
	securities := make([]string, 0)
	for _, rec := range records {
		if _, ok := bySecurity[rec.CUSIP9]; !ok {
			securities = append(securities, rec.CUSIP9)
		}
		bySecurity[rec.CUSIP9] = append(bySecurity[rec.CUSIP9], rec)
	}

	sort.Strings(securities)

	dense := make([]*SharesOutstanding, 0, len(records))
	for _, security := range securities {
		history := bySecurity[security]
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Date < history[j].Date
		})

		var last *float64
		idx := 0
		for day := history[0].Date; day <= history[len(history)-1].Date; day++ {
			for idx < len(history) && history[idx].Date == day {
				if history[idx].Shrout != nil {
					last = history[idx].Shrout
				}
				idx++
			}

			dense = append(dense, &SharesOutstanding{
				Date:   day,
				CUSIP8: history[0].CUSIP8,
				CUSIP9: security,
				Shrout: copyFloat(last),
			})
		}
	}

	return dense
}
