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
package library_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/library"
	"github.com/penny-vault/pvesg/stats"
)

var _ = Describe("Library", func() {
	runID := uuid.MustParse("8f14e45f-ceea-467f-a0e6-7b1e1d3c5a2b")

	It("maps a panel row onto the lending_panel columns", func() {
		day, _ := data.ParseDay("2023-03-01")
		row := &data.PanelRecord{
			Date:               day,
			CUSIP8:             "03783310",
			ShortInterestRatio: data.Float(0.01),
			Severity:           data.Float(2),
			Social:             data.Bool(true),
		}

		values := library.PanelValues(runID, row)
		Expect(values).To(HaveLen(19))
		Expect(values[0]).To(Equal(runID))
		Expect(values[1]).To(Equal(data.TimeFromDay(day)))
		Expect(values[2]).To(Equal("03783310"))
		Expect(values[5]).To(Equal(data.Float(0.01)))
		Expect(values[13]).To(Equal(data.Float(2)))
		Expect(values[17]).To(Equal(data.Bool(true)))
	})

	It("writes one statistics row per group", func() {
		units := []*stats.Unit{
			{
				StatsUnit: data.StatsUnit{Indicator: data.LoanFee, Dimension: data.Reach, Horizon: 26},
				Stats: []*data.DescriptiveStats{
					stats.Describe("1", []*float64{data.Float(1)}),
					stats.Describe("2", nil),
				},
			},
		}

		rows := library.StatsValues(runID, units)
		Expect(rows).To(HaveLen(2))
		Expect(rows[0][1]).To(Equal("loan fee_reach_change_26"))
		Expect(rows[0][4]).To(Equal(26))
		Expect(rows[1][5]).To(Equal("2"))
		Expect(rows[1][6]).To(Equal(int64(0)))
	})
})
