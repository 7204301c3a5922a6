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
	"errors"
	"sort"
	"time"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrDatasetNotFound  = errors.New("dataset not found")
)

type Provider interface {
	Name() string
	Description() string
	Datasets() map[string]Dataset
}

// Dataset describes one table family a provider reads and the cache
// artifact its normalized output is stored under
type Dataset struct {
	Name        string
	Description string
	Artifact    string
	Tables      []string
	DateRange   func() (time.Time, time.Time)
}

// Map holds every source the pipeline pulls from, keyed by artifact name
var Map = map[string]Provider{
	data.CRSPKey:    &CRSP{},
	data.MarkitKey:  &Markit{},
	data.RepRiskKey: &RepRisk{},
}

// Get returns the provider registered under name
func Get(name string) (Provider, error) {
	provider, ok := Map[name]
	if !ok {
		return nil, ErrProviderNotFound
	}

	return provider, nil
}

// Names returns the registered provider keys in sorted order
func Names() []string {
	names := make([]string, 0, len(Map))
	for name := range Map {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// GetDataset returns a single dataset from a provider
func GetDataset(providerName, datasetName string) (Dataset, error) {
	provider, err := Get(providerName)
	if err != nil {
		return Dataset{}, err
	}

	dataset, ok := provider.Datasets()[datasetName]
	if !ok {
		return Dataset{}, ErrDatasetNotFound
	}

	return dataset, nil
}

// Artifacts lists the cache status of every pulled artifact in store
func Artifacts(store *cache.Store) map[string]*cache.Manifest {
	manifests := make(map[string]*cache.Manifest, len(Map))
	for _, name := range Names() {
		if !store.Exists(name) {
			continue
		}

		manifest, err := store.Manifest(name)
		if err != nil {
			manifest = &cache.Manifest{Name: name}
		}

		manifests[name] = manifest
	}

	return manifests
}

func sinceInception(year int) func() (time.Time, time.Time) {
	return func() (time.Time, time.Time) {
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), time.Now().UTC()
	}
}
