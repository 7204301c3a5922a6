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
package config_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvesg/config"
)

var _ = Describe("Config", func() {
	var v *viper.Viper

	BeforeEach(func() {
		v = viper.New()
		config.SetDefaults(v)
	})

	It("uses the documented defaults", func() {
		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.DataDir).To(Equal("./data"))
		Expect(cfg.OutputDir).To(Equal("./output"))
		Expect(cfg.WRDS.Username).To(BeEmpty())
		Expect(cfg.StartDate.Format("2006-01-02")).To(Equal("2022-01-01"))
		Expect(cfg.EndDate.Format("2006-01-02")).To(Equal("2024-01-01"))
		Expect(cfg.WRDS.Host).To(Equal("wrds-pgdata.wharton.upenn.edu"))
		Expect(cfg.WRDS.Port).To(Equal(9737))
		Expect(cfg.Cache.IgnoreDateRange).To(BeTrue())
	})

	It("reads overrides from the environment", func() {
		GinkgoT().Setenv("DATA_DIR", "/tmp/esg-data")
		GinkgoT().Setenv("WRDS_USERNAME", "jdoe")
		GinkgoT().Setenv("START_DATE", "2023-02-01")

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DataDir).To(Equal("/tmp/esg-data"))
		Expect(cfg.WRDS.Username).To(Equal("jdoe"))
		Expect(cfg.StartDate.Format("2006-01-02")).To(Equal("2023-02-01"))
	})

	It("rejects an unparseable date", func() {
		v.Set("end_date", "01/01/2024")
		_, err := config.FromViper(v)
		Expect(err).To(MatchError(config.ErrInvalidDate))
	})

	It("rejects an inverted range", func() {
		v.Set("start_date", "2024-01-01")
		v.Set("end_date", "2022-01-01")
		_, err := config.FromViper(v)
		Expect(err).To(MatchError(config.ErrInvalidRange))
	})

	It("derives artifact directories", func() {
		v.Set("data_dir", "/srv/data")
		v.Set("output_dir", "/srv/output")
		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.PulledDir()).To(Equal("/srv/data/pulled"))
		Expect(cfg.StatsDir()).To(Equal("/srv/output/stats"))
		Expect(cfg.TablesDir()).To(Equal("/srv/output/tables"))
	})

	It("creates every output directory", func() {
		root := GinkgoT().TempDir()
		v.Set("data_dir", filepath.Join(root, "data"))
		v.Set("output_dir", filepath.Join(root, "output"))
		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.EnsureDirs()).To(Succeed())
		for _, dir := range []string{cfg.PulledDir(), cfg.StatsDir(), cfg.TablesDir()} {
			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		}
	})

	It("writes a config file viper can read back", func() {
		v.Set("wrds.username", "jdoe")
		v.Set("cache.ignore_date_range", false)
		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())

		encoded, err := cfg.MarshalTOML()
		Expect(err).NotTo(HaveOccurred())

		reread := viper.New()
		config.SetDefaults(reread)
		reread.SetConfigType("toml")
		Expect(reread.ReadConfig(bytes.NewReader(encoded))).To(Succeed())

		roundTrip, err := config.FromViper(reread)
		Expect(err).NotTo(HaveOccurred())
		Expect(roundTrip.WRDS.Username).To(Equal("jdoe"))
		Expect(roundTrip.Cache.IgnoreDateRange).To(BeFalse())
		Expect(roundTrip.StartDate).To(Equal(cfg.StartDate))
	})

	It("ignores a missing .env file", func() {
		Expect(config.LoadDotEnv(filepath.Join(GinkgoT().TempDir(), ".env"))).To(Succeed())
	})

	It("loads variables from a .env file", func() {
		fn := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(fn, []byte("PVESG_TEST_OUTPUT_DIR=/srv/out\n"), 0o600)).To(Succeed())
		DeferCleanup(os.Unsetenv, "PVESG_TEST_OUTPUT_DIR")

		Expect(config.LoadDotEnv(fn)).To(Succeed())
		Expect(os.Getenv("PVESG_TEST_OUTPUT_DIR")).To(Equal("/srv/out"))
	})
})
