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
package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/config"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/pipeline"
)

// offlineConn fails every query so a test can prove no pull happened
type offlineConn struct {
	calls int
	err   error
}

func (conn *offlineConn) Select(context.Context, interface{}, string, ...interface{}) error {
	conn.calls++
	return conn.err
}

const apple = "03783310"

func seedSources(ctx context.Context, cfg *config.Config) {
	store := cache.NewStore(cfg.PulledDir(), true, uuid.New())
	dateRange := cfg.DateRange()
	start := dateRange.Start

	crsp := data.Densify([]*data.SharesOutstanding{
		{Date: start, CUSIP8: apple, CUSIP9: "037833100", Shrout: data.Float(100)},
		{Date: start + 2, CUSIP8: apple, CUSIP9: "037833100", Shrout: data.Float(200)},
	})

	markit := []*data.LendingRecord{}
	for idx, onLoan := range []float64{10, 20, 30} {
		markit = append(markit, &data.LendingRecord{
			Date:             start + int32(idx),
			CUSIP8:           apple,
			CUSIP:            data.String("037833100"),
			QuantityOnLoan:   data.Float(onLoan),
			LendableQuantity: data.Float(50),
			Utilisation:      data.Float(0.4),
			IndicativeFee:    data.Float(0.25),
		})
	}

	reprisk := []*data.ESGRecord{{
		Date:         start + 1,
		CUSIP8:       apple,
		RepRiskID:    "RR-AAPL",
		IncidentDate: data.Int32(start + 1),
		StoryID:      data.Int64(1),
		Severity:     data.Float(2),
		Reach:        data.Float(1),
		Novelty:      data.Float(1),
		Environment:  data.Bool(false),
		Social:       data.Bool(true),
		Governance:   data.Bool(false),
	}}

	Expect(cache.Save(ctx, store, data.CRSPKey, crsp, dateRange)).To(Succeed())
	Expect(cache.Save(ctx, store, data.MarkitKey, markit, dateRange)).To(Succeed())
	Expect(cache.Save(ctx, store, data.RepRiskKey, reprisk, dateRange)).To(Succeed())
}

var _ = Describe("Pipeline", func() {
	var (
		ctx  context.Context
		cfg  *config.Config
		conn *offlineConn
		opts cache.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		conn = &offlineConn{err: errors.New("FATAL: password authentication failed")}
		opts = cache.Options{UseCache: true, PersistCache: true}
		cfg = &config.Config{
			DataDir:   GinkgoT().TempDir(),
			OutputDir: GinkgoT().TempDir(),
			StartDate: time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC),
			Cache:     config.Cache{IgnoreDateRange: true},
		}
		seedSources(ctx, cfg)
	})

	It("merges cached sources into the analysis panel", func() {
		merged, err := pipeline.New(cfg, conn, opts).MergeAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(conn.calls).To(BeZero())

		Expect(merged).To(HaveLen(3))
		Expect(*merged[0].ShortInterestRatio).To(Equal(0.10))
		Expect(*merged[1].ShortInterestRatio).To(Equal(0.20))
		Expect(*merged[2].ShortInterestRatio).To(Equal(0.15))
		Expect(merged[0].Severity).To(BeNil())
		Expect(*merged[1].Severity).To(Equal(2.0))

		_, err = os.Stat(filepath.Join(cfg.PulledDir(), "merged_data.parquet"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns the same panel from the cache on a second run", func() {
		first, err := pipeline.New(cfg, conn, opts).MergeAll(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Remove(filepath.Join(cfg.PulledDir(), "markit.parquet"))).To(Succeed())

		second, err := pipeline.New(cfg, conn, opts).MergeAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
		Expect(conn.calls).To(BeZero())
	})

	It("pulls live when caching is disabled and surfaces the failure", func() {
		_, err := pipeline.New(cfg, conn, cache.Options{PersistCache: true}).MergeMarkitCRSP(ctx)
		Expect(err).To(BeIdenticalTo(conn.err))
		Expect(conn.calls).To(Equal(1))
	})

	It("runs every stage and renders the tables", func() {
		summary, err := pipeline.New(cfg, conn, opts).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Stages).To(HaveLen(7))
		Expect(summary.Stages[4].Name).To(Equal(data.MergedDataKey))
		Expect(summary.Stages[4].NumRows).To(Equal(3))

		for _, unit := range data.StatsUnits() {
			_, err := os.Stat(filepath.Join(cfg.StatsDir(), unit.Name()+".parquet"))
			Expect(err).NotTo(HaveOccurred())
			_, err = os.Stat(filepath.Join(cfg.TablesDir(), unit.TableName()+".tex"))
			Expect(err).NotTo(HaveOccurred())
		}

		_, err = os.Stat(filepath.Join(cfg.TablesDir(), "stats.xlsx"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses to render tables before statistics exist", func() {
		err := pipeline.New(cfg, conn, opts).RenderTables(ctx)
		Expect(err).To(MatchError(cache.ErrArtifactNotFound))
	})

	It("exports the series of a security", func() {
		buf := &bytes.Buffer{}
		count, err := pipeline.New(cfg, conn, opts).ExportSeries(ctx, buf, []string{"037833100"})
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(3))
		Expect(buf.String()).To(ContainSubstring("2022-01-03,03783310"))
	})
})
