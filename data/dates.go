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
	"time"
)

const (
	DayLayout     = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// DayFromTime returns the number of days between the unix epoch and the
// calendar date of t. Records store dates this way so they map directly onto
// the parquet DATE logical type.
func DayFromTime(t time.Time) int32 {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return int32(midnight.Unix() / secondsPerDay)
}

// TimeFromDay converts a day ordinal back to midnight UTC
func TimeFromDay(day int32) time.Time {
	return time.Unix(int64(day)*secondsPerDay, 0).UTC()
}

// ParseDay parses a YYYY-MM-DD string into a day ordinal
func ParseDay(val string) (int32, error) {
	dt, err := time.Parse(DayLayout, val)
	if err != nil {
		return 0, err
	}

	return DayFromTime(dt), nil
}

func FormatDay(day int32) string {
	return TimeFromDay(day).Format(DayLayout)
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start int32 `json:"start"`
	End   int32 `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{
		Start: DayFromTime(start),
		End:   DayFromTime(end),
	}
}

func (dateRange DateRange) Contains(day int32) bool {
	return day >= dateRange.Start && day <= dateRange.End
}

func (dateRange DateRange) StartTime() time.Time {
	return TimeFromDay(dateRange.Start)
}

func (dateRange DateRange) EndTime() time.Time {
	return TimeFromDay(dateRange.End)
}

func (dateRange DateRange) String() string {
	return FormatDay(dateRange.Start) + " - " + FormatDay(dateRange.End)
}
