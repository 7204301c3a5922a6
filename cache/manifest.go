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
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvesg/data"
	"github.com/rs/zerolog"
)

// Manifest describes how an artifact was produced
type Manifest struct {
	Name      string         `json:"name"`
	RunID     string         `json:"run_id"`
	DateRange data.DateRange `json:"date_range"`
	NumRows   int            `json:"num_rows"`
	WrittenAt time.Time      `json:"written_at"`
}

func (manifest *Manifest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Name", manifest.Name)
	e.Str("RunID", manifest.RunID)
	e.Str("DateRange", manifest.DateRange.String())
	e.Int("NumRows", manifest.NumRows)
	e.Time("WrittenAt", manifest.WrittenAt)
}

func writeManifest(fn string, manifest *Manifest) error {
	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}

	tmpFn := fn + ".tmp"
	if err := os.WriteFile(tmpFn, encoded, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpFn, fn)
}

func readManifest(fn string) (*Manifest, error) {
	encoded, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, fn)
		}
		return nil, err
	}

	manifest := &Manifest{}
	if err := json.Unmarshal(encoded, manifest); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", fn, err)
	}

	return manifest, nil
}
