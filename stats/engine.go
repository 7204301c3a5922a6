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
	"context"
	"sort"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
	"github.com/rs/zerolog"
)

// Observation is a row that can be grouped by an ESG dimension and
// summarized on a lending indicator. Both *data.PanelRecord and
// *ChangeRecord satisfy it.
type Observation interface {
	Indicator(data.Indicator) *float64
	Dimension(data.Dimension) (data.DimensionValue, bool)
}

type group struct {
	value  data.DimensionValue
	values []*float64
}

// GroupBy partitions rows by the distinct non-missing values of dimension,
// ordered by rank, and describes indicator within each group
func GroupBy[T Observation](rows []T, dimension data.Dimension, indicator data.Indicator) []*data.DescriptiveStats {
	groups := make(map[float64]*group)
	for _, row := range rows {
		value, ok := row.Dimension(dimension)
		if !ok {
			continue
		}

		grp, ok := groups[value.Rank]
		if !ok {
			grp = &group{value: value}
			groups[value.Rank] = grp
		}
		grp.values = append(grp.values, row.Indicator(indicator))
	}

	ordered := make([]*group, 0, len(groups))
	for _, grp := range groups {
		ordered = append(ordered, grp)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].value.Rank < ordered[j].value.Rank
	})

	out := make([]*data.DescriptiveStats, len(ordered))
	for idx, grp := range ordered {
		out[idx] = Describe(grp.value.Label, grp.values)
	}

	return out
}

// Unit is the computed output of one statistics unit
type Unit struct {
	data.StatsUnit
	Stats []*data.DescriptiveStats
}

// Compute evaluates every statistics unit over the panel. Change panels are
// built once per horizon.
func Compute(ctx context.Context, panel []*data.PanelRecord) []*Unit {
	logger := zerolog.Ctx(ctx)

	changes := make(map[int][]*ChangeRecord, len(data.Horizons))
	for _, horizon := range data.Horizons {
		if horizon != 0 {
			changes[horizon] = Changes(panel, horizon)
		}
	}

	units := data.StatsUnits()
	out := make([]*Unit, 0, len(units))
	for _, unit := range units {
		var summary []*data.DescriptiveStats
		if unit.Horizon == 0 {
			summary = GroupBy(panel, unit.Dimension, unit.Indicator)
		} else {
			summary = GroupBy(changes[unit.Horizon], unit.Dimension, unit.Indicator)
		}

		logger.Debug().Str("Unit", unit.Name()).Int("NumGroups", len(summary)).Msg("computed statistics unit")
		out = append(out, &Unit{StatsUnit: unit, Stats: summary})
	}

	return out
}

// Save overwrites the artifact of every unit in store
func Save(ctx context.Context, store *cache.Store, dateRange data.DateRange, units []*Unit) error {
	for _, unit := range units {
		if err := cache.Save(ctx, store, unit.Name(), unit.Stats, dateRange); err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Info().Int("NumUnits", len(units)).Str("Dir", store.Dir).Msg("saved descriptive statistics")
	return nil
}

// Load reads every statistics unit from store
func Load(ctx context.Context, store *cache.Store) ([]*Unit, error) {
	units := data.StatsUnits()
	out := make([]*Unit, 0, len(units))
	for _, unit := range units {
		rows, err := cache.Read[data.DescriptiveStats](ctx, store, unit.Name())
		if err != nil {
			return nil, err
		}

		out = append(out, &Unit{StatsUnit: unit, Stats: rows})
	}

	return out, nil
}
