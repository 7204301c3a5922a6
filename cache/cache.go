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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pvesg/data"
	"github.com/rs/zerolog"
)

// ErrArtifactNotFound also matches fs.ErrNotExist
var ErrArtifactNotFound = fmt.Errorf("artifact not found: %w", fs.ErrNotExist)

type Status int

const (
	Disabled Status = iota
	Miss
	Hit
)

func (status Status) String() string {
	switch status {
	case Disabled:
		return "disabled"
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	default:
		return fmt.Sprintf("Status(%d)", int(status))
	}
}

// Result is the outcome of a cache lookup. Rows and Manifest are only set
// when Status is Hit.
type Result[T any] struct {
	Status   Status
	Rows     []*T
	Manifest *Manifest
}

// Options controls how a stage interacts with its artifact
type Options struct {
	UseCache     bool
	PersistCache bool
}

// Store is a directory of parquet artifacts keyed by stage name
type Store struct {
	Dir string

	// IgnoreDateRange lets any existing artifact satisfy a lookup regardless
	// of the date range it was produced for
	IgnoreDateRange bool

	RunID uuid.UUID
}

func NewStore(dir string, ignoreDateRange bool, runID uuid.UUID) *Store {
	return &Store{
		Dir:             dir,
		IgnoreDateRange: ignoreDateRange,
		RunID:           runID,
	}
}

// Path returns the parquet file backing the named artifact
func (store *Store) Path(name string) string {
	return filepath.Join(store.Dir, name+".parquet")
}

func (store *Store) manifestPath(name string) string {
	return filepath.Join(store.Dir, name+".manifest.json")
}

// Exists reports whether the named artifact is present
func (store *Store) Exists(name string) bool {
	_, err := os.Stat(store.Path(name))
	return err == nil
}

// Manifest returns the manifest recorded alongside the named artifact
func (store *Store) Manifest(name string) (*Manifest, error) {
	return readManifest(store.manifestPath(name))
}

// Lookup checks the store for the named artifact. A disabled lookup never
// touches the filesystem; an absent artifact is a miss, not an error. An
// unreadable manifest is treated like a missing one.
func Lookup[T any](ctx context.Context, store *Store, name string, enabled bool, want data.DateRange) (Result[T], error) {
	logger := zerolog.Ctx(ctx)

	if !enabled {
		return Result[T]{Status: Disabled}, nil
	}

	if !store.Exists(name) {
		return Result[T]{Status: Miss}, nil
	}

	manifest, err := store.Manifest(name)
	if err != nil {
		if !errors.Is(err, ErrArtifactNotFound) {
			logger.Warn().Err(err).Str("Artifact", name).Msg("could not read artifact manifest")
		}
		manifest = nil
	}

	if !store.IgnoreDateRange {
		if manifest == nil {
			logger.Warn().Str("Artifact", name).Msg("artifact has no manifest; treating as stale")
			return Result[T]{Status: Miss}, nil
		}

		if manifest.DateRange != want {
			logger.Warn().Str("Artifact", name).Str("Cached", manifest.DateRange.String()).
				Str("Requested", want.String()).Msg("cached artifact covers a different date range; treating as stale")
			return Result[T]{Status: Miss}, nil
		}
	}

	rows, err := ReadParquet[T](ctx, store.Path(name))
	if err != nil {
		return Result[T]{}, err
	}

	return Result[T]{
		Status:   Hit,
		Rows:     rows,
		Manifest: manifest,
	}, nil
}

// Save overwrites the named artifact and its manifest. The old manifest is
// removed first so it never describes the new data.
func Save[T any](ctx context.Context, store *Store, name string, rows []*T, dateRange data.DateRange) error {
	if err := os.MkdirAll(store.Dir, 0o755); err != nil {
		return err
	}

	// the old manifest must not describe the new parquet file
	if err := os.Remove(store.manifestPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := WriteParquet(ctx, store.Path(name), rows); err != nil {
		return err
	}

	manifest := &Manifest{
		Name:      name,
		RunID:     store.RunID.String(),
		DateRange: dateRange,
		NumRows:   len(rows),
		WrittenAt: time.Now().UTC(),
	}

	if err := writeManifest(store.manifestPath(name), manifest); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Object("Manifest", manifest).Msg("saved artifact")
	return nil
}

// Read loads an artifact that must already exist; there is no fallback to
// recomputing it
func Read[T any](ctx context.Context, store *Store, name string) ([]*T, error) {
	if !store.Exists(name) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, store.Path(name))
	}

	return ReadParquet[T](ctx, store.Path(name))
}

// Memoize returns the cached artifact when the lookup hits; otherwise it runs
// compute and, if requested, persists the result
func Memoize[T any](ctx context.Context, store *Store, name string, opts Options, dateRange data.DateRange,
	compute func(context.Context) ([]*T, error)) ([]*T, error) {
	logger := zerolog.Ctx(ctx)

	result, err := Lookup[T](ctx, store, name, opts.UseCache, dateRange)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case Hit:
		logger.Info().Str("Artifact", name).Int("NumRecords", len(result.Rows)).Msg("using cached artifact")
		return result.Rows, nil
	case Miss, Disabled:
		logger.Info().Str("Artifact", name).Stringer("Cache", result.Status).Msg("computing artifact")
	}

	rows, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if opts.PersistCache {
		if err := Save(ctx, store, name, rows, dateRange); err != nil {
			return nil, err
		}
	}

	return rows, nil
}
