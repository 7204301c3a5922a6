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
package wrds

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Partition is one slice of a source that is stored as several tables or
// must be pulled in pieces. Start and End are inclusive.
type Partition struct {
	Label string
	Start time.Time
	End   time.Time
}

func (partition Partition) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Label", partition.Label)
	e.Time("Start", partition.Start)
	e.Time("End", partition.End)
}

// YearPartitions splits [start, end] on calendar year boundaries
func YearPartitions(start, end time.Time) []Partition {
	if end.Before(start) {
		return nil
	}

	partitions := make([]Partition, 0, end.Year()-start.Year()+1)
	for year := start.Year(); year <= end.Year(); year++ {
		partStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		if partStart.Before(start) {
			partStart = start
		}

		partEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		if partEnd.After(end) {
			partEnd = end
		}

		partitions = append(partitions, Partition{
			Label: strconv.Itoa(year),
			Start: partStart,
			End:   partEnd,
		})
	}

	return partitions
}

// FetchPartitioned calls fetch for each partition in order and returns one
// page per partition. The first error stops the pull and is returned as is.
func FetchPartitioned[T any](ctx context.Context, partitions []Partition, fetch func(context.Context, Partition) ([]T, error)) ([][]T, error) {
	logger := zerolog.Ctx(ctx)
	pages := make([][]T, 0, len(partitions))

	for _, partition := range partitions {
		page, err := fetch(ctx, partition)
		if err != nil {
			return nil, err
		}

		logger.Info().Object("Partition", partition).Int("NumRecords", len(page)).Msg("fetched partition")
		pages = append(pages, page)
	}

	return pages, nil
}

// Concat joins partition pages into a single table, preserving order
func Concat[T any](pages [][]T) []T {
	total := 0
	for _, page := range pages {
		total += len(page)
	}

	out := make([]T, 0, total)
	for _, page := range pages {
		out = append(out, page...)
	}

	return out
}
