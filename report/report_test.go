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
package report_test

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/report"
	"github.com/penny-vault/pvesg/stats"
)

func sampleUnit(horizon int) *stats.Unit {
	return &stats.Unit{
		StatsUnit: data.StatsUnit{Indicator: data.LoanFee, Dimension: data.Social, Horizon: horizon},
		Stats: []*data.DescriptiveStats{
			stats.Describe("false", []*float64{data.Float(1), data.Float(3)}),
			stats.Describe("true", []*float64{data.Float(0.5)}),
		},
	}
}

var _ = Describe("Report", func() {
	It("renders a unit as a transposed LaTeX table", func() {
		table := report.LaTeX(sampleUnit(0))
		lines := strings.Split(strings.TrimSpace(table), "\n")

		Expect(lines[0]).To(Equal(`\begin{tabular}{lrr}`))
		Expect(lines[2]).To(Equal(`social & false & true \\`))
		Expect(lines[4]).To(Equal(`count & 2.0000 & 1.0000 \\`))
		Expect(lines[5]).To(Equal(`mean & 2.0000 & 0.5000 \\`))
		Expect(lines[6]).To(Equal(`std & 1.4142 & NaN \\`))
		Expect(lines[8]).To(Equal(`10\% & 1.2000 & 0.5000 \\`))
		Expect(lines[len(lines)-1]).To(Equal(`\end{tabular}`))
		Expect(lines).To(HaveLen(len(data.StatisticNames) + 6))
	})

	It("writes one csv line per group", func() {
		buf := &bytes.Buffer{}
		Expect(report.WriteCSV(buf, sampleUnit(5))).To(Succeed())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(Equal("group,count,mean,std,min,10%,25%,50%,75%,90%,max"))
		Expect(lines[1]).To(HavePrefix("false,2,2,"))
	})

	It("lays out a workbook with one sheet per dimension and horizon", func() {
		units := []*stats.Unit{sampleUnit(0), sampleUnit(5)}
		other := sampleUnit(0)
		other.Indicator = data.ShortInterestRatio
		units = append(units, other)

		f, err := report.Workbook(units)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(Equal([]string{"social", "social_change_5"}))

		title, err := f.GetCellValue("social", "A1")
		Expect(err).NotTo(HaveOccurred())
		Expect(title).To(Equal("loan fee"))

		group, err := f.GetCellValue("social", "C2")
		Expect(err).NotTo(HaveOccurred())
		Expect(group).To(Equal("true"))

		// second block starts after the first block and a blank row
		second, err := f.GetCellValue("social", "A14")
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal("short interest ratio"))
	})

	It("extracts the series of the requested securities", func() {
		day, _ := data.ParseDay("2023-01-05")
		panel := []*data.PanelRecord{
			{Date: day, CUSIP8: "03783310", InstrumentName: data.String("Apple Inc"), ShortInterestRatio: data.Float(0.01)},
			{Date: day, CUSIP8: "59491810", ShortInterestRatio: data.Float(0.02)},
			{Date: day + 1, CUSIP8: "03783310", LoanFee: data.Float(0.25)},
		}

		points := report.SeriesFor(panel, []string{"037833100"})
		Expect(points).To(HaveLen(2))
		Expect(points[0].Date).To(Equal("2023-01-05"))
		Expect(points[0].InstrumentName).To(Equal("Apple Inc"))
		Expect(*points[1].LoanFee).To(Equal(0.25))

		buf := &bytes.Buffer{}
		Expect(report.WriteSeries(buf, points)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("date,cusip8,instrumentname,short interest ratio,loan supply ratio,loan utilisation ratio,loan fee\n"))
	})

	It("summarizes the pipeline artifacts", func() {
		ctx := context.Background()
		runID := uuid.New()
		pulled := cache.NewStore(GinkgoT().TempDir(), true, runID)
		statistics := cache.NewStore(GinkgoT().TempDir(), true, runID)

		requested := data.DateRange{Start: 18993, End: 19723}
		Expect(cache.Save(ctx, pulled, data.CRSPKey, []*data.SharesOutstanding{{CUSIP8: "03783310"}}, requested)).To(Succeed())
		Expect(cache.Save(ctx, pulled, data.MarkitKey, []*data.LendingRecord{}, data.DateRange{Start: 1, End: 2})).To(Succeed())

		summary, err := report.Summary(pulled, statistics, requested)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(ContainSubstring("crsp: 1 rows, 2022-01-01 - 2024-01-01"))
		Expect(summary).To(MatchRegexp(`markit: 0 rows, .*\(stale\)`))
		Expect(summary).To(ContainSubstring("reprisk: missing"))
		Expect(summary).To(ContainSubstring("Units: 0 of 72"))
		Expect(summary).To(ContainSubstring("Last Computed: Never"))
	})
})

var _ = Describe("WriteTables", func() {
	It("writes a table pair per unit and the workbook", func() {
		dir := GinkgoT().TempDir()
		Expect(report.WriteTables(context.Background(), dir, []*stats.Unit{sampleUnit(0), sampleUnit(26)})).To(Succeed())

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}

		Expect(names).To(ConsistOf(
			"loan_fee_social.tex", "loan_fee_social.csv",
			"loan_fee_social_change_26.tex", "loan_fee_social_change_26.csv",
			"stats.xlsx",
		))
	})
})
