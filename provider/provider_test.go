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
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
)

type fakeConn struct {
	crsp    []*crspRow
	markit  map[string][]*markitRow
	reprisk []*repRiskRow
	err     error

	queries []string
	args    [][]interface{}
}

func (conn *fakeConn) Select(_ context.Context, dst interface{}, query string, args ...interface{}) error {
	conn.queries = append(conn.queries, query)
	conn.args = append(conn.args, args)
	if conn.err != nil {
		return conn.err
	}

	switch out := dst.(type) {
	case *[]*crspRow:
		*out = conn.crsp
	case *[]*markitRow:
		for table, rows := range conn.markit {
			if strings.Contains(query, table) {
				*out = rows
			}
		}
	case *[]*repRiskRow:
		*out = conn.reprisk
	default:
		return fmt.Errorf("unexpected destination %T", dst)
	}

	return nil
}

func day(val string) time.Time {
	tm, err := time.Parse(data.DayLayout, val)
	Expect(err).NotTo(HaveOccurred())
	return tm
}

var _ = Describe("Providers", func() {
	var (
		ctx       context.Context
		store     *cache.Store
		dateRange data.DateRange
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = cache.NewStore(GinkgoT().TempDir(), true, uuid.New())
		dateRange = data.NewDateRange(day("2022-01-01"), day("2023-12-31"))
	})

	It("registers every source under its artifact name", func() {
		Expect(Names()).To(Equal([]string{"crsp", "markit", "reprisk"}))
		for name, provider := range Map {
			for _, dataset := range provider.Datasets() {
				Expect(dataset.Artifact).To(Equal(name))
			}
		}

		_, err := Get("bloomberg")
		Expect(err).To(MatchError(ErrProviderNotFound))

		_, err = GetDataset("crsp", "Monthly Returns")
		Expect(err).To(MatchError(ErrDatasetNotFound))
	})

	It("reports the cached artifact of each source", func() {
		Expect(Artifacts(store)).To(BeEmpty())

		Expect(cache.Save(ctx, store, data.MarkitKey, []*data.LendingRecord{{CUSIP8: "03783310"}}, dateRange)).To(Succeed())

		artifacts := Artifacts(store)
		Expect(artifacts).To(HaveLen(1))
		Expect(artifacts).To(HaveKey(data.MarkitKey))
		Expect(artifacts[data.MarkitKey].NumRows).To(Equal(1))
		Expect(artifacts[data.MarkitKey].DateRange).To(Equal(dateRange))
	})

	Describe("CRSP", func() {
		It("scales shares outstanding and fills every calendar day", func() {
			conn := &fakeConn{crsp: []*crspRow{
				{Date: day("2022-01-03"), CUSIP8: data.String("03783310"), CUSIP9: data.String("037833100"), Shrout: data.Float(100)},
				{Date: day("2022-01-06"), CUSIP8: data.String("03783310"), CUSIP9: data.String("037833100"), Shrout: data.Float(200)},
				{Date: day("2022-01-03"), CUSIP8: data.String("99999999"), Shrout: data.Float(5)},
			}}

			records, err := (&CRSP{}).Pull(ctx, conn, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))

			shrout := make([]float64, 0, len(records))
			for idx, rec := range records {
				Expect(rec.CUSIP8).To(Equal("03783310"))
				if idx > 0 {
					Expect(rec.Date).To(Equal(records[idx-1].Date + 1))
				}
				shrout = append(shrout, *rec.Shrout)
			}
			Expect(shrout).To(Equal([]float64{100000, 100000, 100000, 200000}))

			Expect(conn.args[0]).To(Equal([]interface{}{day("2022-01-01"), day("2023-12-31")}))
		})
	})

	Describe("Markit", func() {
		It("queries one table per year and drops rows without an identifier", func() {
			conn := &fakeConn{markit: map[string][]*markitRow{
				"amereqty2022": {
					{DataDate: day("2022-06-01"), CUSIP: data.String("037833100"), QuantityOnLoan: data.Float(10)},
					{DataDate: day("2022-06-01"), QuantityOnLoan: data.Float(99)},
				},
				"amereqty2023": {
					{DataDate: day("2023-06-01"), ISIN: data.String("US36467W1099"), QuantityOnLoan: data.Float(20)},
				},
			}}

			records, err := (&Markit{}).Pull(ctx, conn, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.queries).To(HaveLen(2))
			Expect(conn.queries[0]).To(ContainSubstring("amereqty2022"))
			Expect(conn.queries[1]).To(ContainSubstring("amereqty2023"))

			Expect(records).To(HaveLen(2))
			Expect(records[0].CUSIP8).To(Equal("03783310"))
			Expect(records[1].CUSIP8).To(Equal("36467W10"))
			Expect(*records[1].QuantityOnLoan).To(Equal(20.0))
		})

		It("propagates query failures unchanged", func() {
			boom := errors.New(`relation "amereqty2022" does not exist`)
			_, err := (&Markit{}).Pull(ctx, &fakeConn{err: boom}, dateRange)
			Expect(err).To(BeIdenticalTo(boom))
		})

		It("serves a cached pull without querying again", func() {
			conn := &fakeConn{markit: map[string][]*markitRow{
				"amereqty2022": {{DataDate: day("2022-06-01"), CUSIP: data.String("037833100")}},
			}}
			opts := cache.Options{UseCache: true, PersistCache: true}

			first, err := (&Markit{}).Load(ctx, conn, store, dateRange, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.queries).To(HaveLen(2))

			second, err := (&Markit{}).Load(ctx, conn, store, dateRange, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.queries).To(HaveLen(2))
			Expect(second).To(Equal(first))
		})
	})

	Describe("RepRisk", func() {
		It("derives the CUSIP from the primary ISIN and clears partial incidents", func() {
			incident := day("2022-03-01")
			conn := &fakeConn{reprisk: []*repRiskRow{
				{
					RepRiskID: "RR1", Date: incident, PrimaryISIN: data.String("US0378331005"),
					CurrentRRI: data.Int64(25), IncidentDate: &incident, StoryID: data.Int64(7),
					Severity: data.Float(2), Reach: data.Float(1), Novelty: data.Float(1),
					Environment: data.Bool(true), Social: data.Bool(false), Governance: data.Bool(false),
				},
				{
					RepRiskID: "RR2", Date: incident, PrimaryISIN: data.String("GB"),
					IncidentDate: &incident, Severity: data.Float(3),
				},
			}}

			records, err := (&RepRisk{}).Pull(ctx, conn, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))

			Expect(records[0].CUSIP8).To(Equal("03783310"))
			Expect(records[0].HasIncident()).To(BeTrue())
			Expect(*records[0].IncidentDate).To(Equal(data.DayFromTime(incident)))

			Expect(records[1].CUSIP8).To(BeEmpty())
			Expect(records[1].IncidentDate).To(BeNil())
			Expect(records[1].Severity).To(BeNil())
		})
	})
})
