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
package cache_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
)

func samplePanel() []*data.PanelRecord {
	day, _ := data.ParseDay("2022-01-03")
	return []*data.PanelRecord{
		{
			Date:               day,
			CUSIP8:             "03783310",
			CUSIP:              data.String("037833100"),
			ISIN:               data.String("US0378331005"),
			QuantityOnLoan:     data.Float(10),
			Shrout:             data.Float(100),
			ShortInterestRatio: data.Float(0.1),
			CurrentRRI:         data.Int64(31),
			PeakRRIDate:        data.Int32(day - 30),
			Severity:           data.Float(2),
			Environment:        data.Bool(true),
			Social:             data.Bool(false),
		},
		{
			Date:   day + 1,
			CUSIP8: "36467W10",
		},
	}
}

var _ = Describe("Cache", func() {
	var (
		ctx       context.Context
		store     *cache.Store
		dateRange data.DateRange
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = cache.NewStore(GinkgoT().TempDir(), true, uuid.New())
		dateRange = data.DateRange{Start: 18993, End: 19723}
	})

	It("round trips every supported column type", func() {
		rows := samplePanel()
		Expect(cache.Save(ctx, store, "merged_data", rows, dateRange)).To(Succeed())

		loaded, err := cache.Read[data.PanelRecord](ctx, store, "merged_data")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(rows))
	})

	It("round trips an empty table", func() {
		Expect(cache.Save(ctx, store, "crsp", []*data.SharesOutstanding{}, dateRange)).To(Succeed())

		loaded, err := cache.Read[data.SharesOutstanding](ctx, store, "crsp")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(BeEmpty())
	})

	It("leaves no temporary files behind", func() {
		Expect(cache.Save(ctx, store, "merged_data", samplePanel(), dateRange)).To(Succeed())

		entries, err := os.ReadDir(store.Dir)
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		Expect(names).To(ConsistOf("merged_data.parquet", "merged_data.manifest.json"))
	})

	It("records a manifest", func() {
		Expect(cache.Save(ctx, store, "merged_data", samplePanel(), dateRange)).To(Succeed())

		manifest, err := store.Manifest("merged_data")
		Expect(err).NotTo(HaveOccurred())
		Expect(manifest.Name).To(Equal("merged_data"))
		Expect(manifest.NumRows).To(Equal(2))
		Expect(manifest.DateRange).To(Equal(dateRange))
		Expect(manifest.RunID).To(Equal(store.RunID.String()))
	})

	It("fails a direct read of a missing artifact", func() {
		_, err := cache.Read[data.PanelRecord](ctx, store, "merged_data")
		Expect(err).To(MatchError(cache.ErrArtifactNotFound))
		Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
	})

	Describe("Lookup", func() {
		It("is disabled when caching is off", func() {
			Expect(cache.Save(ctx, store, "crsp", []*data.SharesOutstanding{}, dateRange)).To(Succeed())

			result, err := cache.Lookup[data.SharesOutstanding](ctx, store, "crsp", false, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Disabled))
			Expect(result.Rows).To(BeNil())
		})

		It("misses when the artifact is absent", func() {
			result, err := cache.Lookup[data.SharesOutstanding](ctx, store, "crsp", true, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Miss))
		})

		It("hits regardless of the requested range by default", func() {
			Expect(cache.Save(ctx, store, "merged_data", samplePanel(), dateRange)).To(Succeed())

			other := data.DateRange{Start: 1, End: 2}
			result, err := cache.Lookup[data.PanelRecord](ctx, store, "merged_data", true, other)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Hit))
			Expect(result.Rows).To(HaveLen(2))
			Expect(result.Manifest.DateRange).To(Equal(dateRange))
		})

		It("misses on a range mismatch when ranges are enforced", func() {
			store.IgnoreDateRange = false
			Expect(cache.Save(ctx, store, "merged_data", samplePanel(), dateRange)).To(Succeed())

			result, err := cache.Lookup[data.PanelRecord](ctx, store, "merged_data", true, data.DateRange{Start: 1, End: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Miss))

			result, err = cache.Lookup[data.PanelRecord](ctx, store, "merged_data", true, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Hit))
		})
	})

	Describe("Manifests", func() {
		var manifestFn string

		BeforeEach(func() {
			manifestFn = filepath.Join(store.Dir, "merged_data.manifest.json")
			Expect(cache.Save(ctx, store, "merged_data", samplePanel(), dateRange)).To(Succeed())
			Expect(os.WriteFile(manifestFn, []byte("{not json"), 0o644)).To(Succeed())
		})

		It("hits on an unreadable manifest when ranges are ignored", func() {
			result, err := cache.Lookup[data.PanelRecord](ctx, store, "merged_data", true, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Hit))
			Expect(result.Rows).To(HaveLen(2))
			Expect(result.Manifest).To(BeNil())
		})

		It("misses on an unreadable manifest when ranges are enforced", func() {
			store.IgnoreDateRange = false

			result, err := cache.Lookup[data.PanelRecord](ctx, store, "merged_data", true, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Miss))
		})

		It("drops the previous manifest before replacing the data", func() {
			store.IgnoreDateRange = false
			Expect(cache.Save(ctx, store, "merged_data", samplePanel(), dateRange)).To(Succeed())

			// a directory in the way makes the next parquet write fail
			Expect(os.Mkdir(filepath.Join(store.Dir, "merged_data.parquet.tmp"), 0o755)).To(Succeed())
			Expect(cache.Save(ctx, store, "merged_data", samplePanel()[:1], data.DateRange{Start: 1, End: 2})).NotTo(Succeed())

			_, err := os.Stat(manifestFn)
			Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())

			result, err := cache.Lookup[data.PanelRecord](ctx, store, "merged_data", true, dateRange)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(cache.Miss))
		})
	})

	Describe("Memoize", func() {
		It("computes once and then serves the cached artifact", func() {
			calls := 0
			compute := func(context.Context) ([]*data.PanelRecord, error) {
				calls++
				return samplePanel(), nil
			}
			opts := cache.Options{UseCache: true, PersistCache: true}

			first, err := cache.Memoize(ctx, store, "markit_crsp_ratios", opts, dateRange, compute)
			Expect(err).NotTo(HaveOccurred())
			second, err := cache.Memoize(ctx, store, "markit_crsp_ratios", opts, dateRange, compute)
			Expect(err).NotTo(HaveOccurred())

			Expect(calls).To(Equal(1))
			Expect(second).To(Equal(first))
		})

		It("recomputes when caching is disabled", func() {
			calls := 0
			compute := func(context.Context) ([]*data.PanelRecord, error) {
				calls++
				return samplePanel(), nil
			}
			opts := cache.Options{UseCache: false, PersistCache: true}

			_, err := cache.Memoize(ctx, store, "markit_crsp_ratios", opts, dateRange, compute)
			Expect(err).NotTo(HaveOccurred())
			_, err = cache.Memoize(ctx, store, "markit_crsp_ratios", opts, dateRange, compute)
			Expect(err).NotTo(HaveOccurred())

			Expect(calls).To(Equal(2))
			Expect(store.Exists("markit_crsp_ratios")).To(BeTrue())
		})

		It("does not persist unless asked", func() {
			compute := func(context.Context) ([]*data.PanelRecord, error) {
				return samplePanel(), nil
			}

			_, err := cache.Memoize(ctx, store, "markit_crsp_ratios", cache.Options{UseCache: true}, dateRange, compute)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Exists("markit_crsp_ratios")).To(BeFalse())
		})

		It("propagates compute errors unchanged", func() {
			boom := errors.New("connection refused")
			compute := func(context.Context) ([]*data.PanelRecord, error) {
				return nil, boom
			}

			_, err := cache.Memoize(ctx, store, "markit_crsp_ratios", cache.Options{UseCache: true, PersistCache: true}, dateRange, compute)
			Expect(err).To(BeIdenticalTo(boom))
		})
	})
})
