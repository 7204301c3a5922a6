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

// DescriptiveStats summarizes the distribution of one lending indicator (or
// its change over a horizon) for a single value of an ESG dimension
type DescriptiveStats struct {
	Group string   `json:"group" csv:"group" parquet:"name=group, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Count int64    `json:"count" csv:"count" parquet:"name=count, type=INT64"`
	Mean  *float64 `json:"mean" csv:"mean" parquet:"name=mean, type=DOUBLE, repetitiontype=OPTIONAL"`
	Std   *float64 `json:"std" csv:"std" parquet:"name=std, type=DOUBLE, repetitiontype=OPTIONAL"`
	Min   *float64 `json:"min" csv:"min" parquet:"name=min, type=DOUBLE, repetitiontype=OPTIONAL"`
	P10   *float64 `json:"p10" csv:"10%" parquet:"name=p10, type=DOUBLE, repetitiontype=OPTIONAL"`
	P25   *float64 `json:"p25" csv:"25%" parquet:"name=p25, type=DOUBLE, repetitiontype=OPTIONAL"`
	P50   *float64 `json:"p50" csv:"50%" parquet:"name=p50, type=DOUBLE, repetitiontype=OPTIONAL"`
	P75   *float64 `json:"p75" csv:"75%" parquet:"name=p75, type=DOUBLE, repetitiontype=OPTIONAL"`
	P90   *float64 `json:"p90" csv:"90%" parquet:"name=p90, type=DOUBLE, repetitiontype=OPTIONAL"`
	Max   *float64 `json:"max" csv:"max" parquet:"name=max, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// StatisticNames lists the statistics in the order tables display them
var StatisticNames = []string{"count", "mean", "std", "min", "10%", "25%", "50%", "75%", "90%", "max"}

// Statistic returns the named statistic as a float; count is always present
func (stats *DescriptiveStats) Statistic(name string) *float64 {
	switch name {
	case "count":
		count := float64(stats.Count)
		return &count
	case "mean":
		return stats.Mean
	case "std":
		return stats.Std
	case "min":
		return stats.Min
	case "10%":
		return stats.P10
	case "25%":
		return stats.P25
	case "50%":
		return stats.P50
	case "75%":
		return stats.P75
	case "90%":
		return stats.P90
	case "max":
		return stats.Max
	default:
		return nil
	}
}

// SeriesPoint is one day of lending indicators for a single security
type SeriesPoint struct {
	Date                 string   `csv:"date"`
	CUSIP8               string   `csv:"cusip8"`
	InstrumentName       string   `csv:"instrumentname"`
	ShortInterestRatio   *float64 `csv:"short interest ratio"`
	LoanSupplyRatio      *float64 `csv:"loan supply ratio"`
	LoanUtilisationRatio *float64 `csv:"loan utilisation ratio"`
	LoanFee              *float64 `csv:"loan fee"`
}
