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
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvesg/data"
)

type fileHealthchecks struct {
	PingURL string `toml:"ping_url,omitempty"`
}

type fileLibrary struct {
	DBUrl string `toml:"db_url,omitempty"`
}

type fileLog struct {
	Level string `toml:"level"`
}

// fileConfig mirrors the layout of ~/.pvesg.toml
type fileConfig struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
	StartDate string `toml:"start_date"`
	EndDate   string `toml:"end_date"`

	WRDS         WRDS             `toml:"wrds"`
	Cache        Cache            `toml:"cache"`
	Backblaze    Backblaze        `toml:"backblaze"`
	Healthchecks fileHealthchecks `toml:"healthchecks"`
	Library      fileLibrary      `toml:"library"`
	Log          fileLog          `toml:"log"`
}

// MarshalTOML encodes cfg in the layout read back by viper
func (cfg *Config) MarshalTOML() ([]byte, error) {
	out := fileConfig{
		DataDir:      cfg.DataDir,
		OutputDir:    cfg.OutputDir,
		StartDate:    cfg.StartDate.Format(data.DayLayout),
		EndDate:      cfg.EndDate.Format(data.DayLayout),
		WRDS:         cfg.WRDS,
		Cache:        cfg.Cache,
		Backblaze:    cfg.Backblaze,
		Healthchecks: fileHealthchecks{PingURL: cfg.HealthcheckURL},
		Library:      fileLibrary{DBUrl: cfg.LibraryDBUrl},
		Log:          fileLog{Level: cfg.LogLevel},
	}

	return toml.Marshal(out)
}

// LoadDotEnv copies variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
