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
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/penny-vault/pvesg/data"
	"github.com/spf13/viper"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidRange = errors.New("start date must be before end date")
)

const (
	DefaultDataDir   = "./data"
	DefaultOutputDir = "./output"
	DefaultStartDate = "2022-01-01"
	DefaultEndDate   = "2024-01-01"
	DefaultWRDSHost  = "wrds-pgdata.wharton.upenn.edu"
	DefaultWRDSPort  = 9737
)

type WRDS struct {
	Username          string `toml:"username"`
	Password          string `toml:"password,omitempty"`
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

type Cache struct {
	// IgnoreDateRange lets an existing artifact satisfy any requested date
	// range. When false an artifact whose recorded range differs from the
	// requested range is treated as a miss.
	IgnoreDateRange bool `toml:"ignore_date_range"`
}

type Backblaze struct {
	ApplicationID  string `toml:"application_id,omitempty"`
	ApplicationKey string `toml:"application_key,omitempty"`
	Bucket         string `toml:"bucket,omitempty"`
}

// Config is the complete configuration of a pipeline run. It is built once
// by the command layer and passed explicitly to every stage.
type Config struct {
	DataDir   string    `toml:"data_dir"`
	OutputDir string    `toml:"output_dir"`
	StartDate time.Time `toml:"-"`
	EndDate   time.Time `toml:"-"`

	WRDS      WRDS      `toml:"wrds"`
	Cache     Cache     `toml:"cache"`
	Backblaze Backblaze `toml:"backblaze"`

	HealthcheckURL string `toml:"-"`
	LibraryDBUrl   string `toml:"-"`
	LogLevel       string `toml:"-"`
}

// SetDefaults registers default values and the environment variable names
// that are not derivable from the key name
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("start_date", DefaultStartDate)
	v.SetDefault("end_date", DefaultEndDate)
	v.SetDefault("wrds.username", "")
	v.SetDefault("wrds.host", DefaultWRDSHost)
	v.SetDefault("wrds.port", DefaultWRDSPort)
	v.SetDefault("wrds.requests_per_minute", 60)
	v.SetDefault("cache.ignore_date_range", true)
	v.SetDefault("log.level", "info")

	bindings := map[string]string{
		"data_dir":                  "DATA_DIR",
		"output_dir":                "OUTPUT_DIR",
		"start_date":                "START_DATE",
		"end_date":                  "END_DATE",
		"wrds.username":             "WRDS_USERNAME",
		"wrds.password":             "WRDS_PASSWORD",
		"wrds.host":                 "WRDS_HOST",
		"wrds.port":                 "WRDS_PORT",
		"wrds.requests_per_minute":  "WRDS_REQUESTS_PER_MINUTE",
		"cache.ignore_date_range":   "CACHE_IGNORE_DATE_RANGE",
		"healthchecks.ping_url":     "HEALTHCHECKS_PING_URL",
		"backblaze.application_id":  "BACKBLAZE_APPLICATION_ID",
		"backblaze.application_key": "BACKBLAZE_APPLICATION_KEY",
		"backblaze.bucket":          "BACKBLAZE_BUCKET",
		"library.db_url":            "LIBRARY_DB_URL",
		"log.level":                 "LOG_LEVEL",
	}

	for key, env := range bindings {
		// BindEnv only fails when no key is given
		_ = v.BindEnv(key, env)
	}
}

// FromViper reads and validates a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	start, err := parseDate(v.GetString("start_date"))
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}

	end, err := parseDate(v.GetString("end_date"))
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}

	if !start.Before(end) {
		return nil, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, start.Format(data.DayLayout), end.Format(data.DayLayout))
	}

	cfg := &Config{
		DataDir:   v.GetString("data_dir"),
		OutputDir: v.GetString("output_dir"),
		StartDate: start,
		EndDate:   end,
		WRDS: WRDS{
			Username:          v.GetString("wrds.username"),
			Password:          v.GetString("wrds.password"),
			Host:              v.GetString("wrds.host"),
			Port:              v.GetInt("wrds.port"),
			RequestsPerMinute: v.GetInt("wrds.requests_per_minute"),
		},
		Cache: Cache{
			IgnoreDateRange: v.GetBool("cache.ignore_date_range"),
		},
		Backblaze: Backblaze{
			ApplicationID:  v.GetString("backblaze.application_id"),
			ApplicationKey: v.GetString("backblaze.application_key"),
			Bucket:         v.GetString("backblaze.bucket"),
		},
		HealthcheckURL: v.GetString("healthchecks.ping_url"),
		LibraryDBUrl:   v.GetString("library.db_url"),
		LogLevel:       v.GetString("log.level"),
	}

	return cfg, nil
}

func parseDate(val string) (time.Time, error) {
	dt, err := time.Parse(data.DayLayout, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, val)
	}

	return dt, nil
}

// DateRange returns the configured pipeline range
func (cfg *Config) DateRange() data.DateRange {
	return data.NewDateRange(cfg.StartDate, cfg.EndDate)
}

// PulledDir holds source and merge stage artifacts
func (cfg *Config) PulledDir() string {
	return filepath.Join(cfg.DataDir, "pulled")
}

// StatsDir holds one artifact per descriptive statistics unit
func (cfg *Config) StatsDir() string {
	return filepath.Join(cfg.OutputDir, "stats")
}

// TablesDir holds rendered tables
func (cfg *Config) TablesDir() string {
	return filepath.Join(cfg.OutputDir, "tables")
}

// EnsureDirs creates every directory the pipeline writes to
func (cfg *Config) EnsureDirs() error {
	for _, dir := range []string{cfg.PulledDir(), cfg.StatsDir(), cfg.TablesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return nil
}
