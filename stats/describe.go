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
	"math"
	"sort"

	"github.com/penny-vault/pvesg/data"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Percentiles reported by Describe, in order
var Percentiles = []float64{0.10, 0.25, 0.50, 0.75, 0.90}

// Describe summarizes the non-missing values of a group. Standard deviation
// uses the sample (n-1) estimator and is missing for fewer than two values.
// Every statistic except count is missing for an empty group.
func Describe(group string, values []*float64) *data.DescriptiveStats {
	present := lo.FilterMap(values, func(val *float64, _ int) (float64, bool) {
		if val == nil || math.IsNaN(*val) {
			return 0, false
		}
		return *val, true
	})

	summary := &data.DescriptiveStats{
		Group: group,
		Count: int64(len(present)),
	}

	if len(present) == 0 {
		return summary
	}

	sort.Float64s(present)

	mean, std := stat.MeanStdDev(present, nil)
	summary.Mean = data.Float(mean)
	if len(present) > 1 {
		summary.Std = data.Float(std)
	}

	summary.Min = data.Float(floats.Min(present))
	summary.Max = data.Float(floats.Max(present))

	quantiles := lo.Map(Percentiles, func(p float64, _ int) *float64 {
		return data.Float(linearQuantile(present, p))
	})
	summary.P10 = quantiles[0]
	summary.P25 = quantiles[1]
	summary.P50 = quantiles[2]
	summary.P75 = quantiles[3]
	summary.P90 = quantiles[4]

	return summary
}

// linearQuantile interpolates between the closest ranks of sorted, placing
// the p-quantile at position p*(n-1)
func linearQuantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lower := math.Floor(pos)
	idx := int(lower)
	if idx+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	return sorted[idx] + (pos-lower)*(sorted[idx+1]-sorted[idx])
}
