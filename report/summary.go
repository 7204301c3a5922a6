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
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a markdown description of every pipeline artifact in the
// pulled and stats stores, compared against the requested date range
func Summary(pulled, statistics *cache.Store, dateRange data.DateRange) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# Pipeline Status\n\n## Details\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(fmt.Sprintf("  * Data: %s\n  * Statistics: %s\n  * Requested Range: %s\n\n",
		pulled.Dir, statistics.Dir, dateRange)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Stages\n\n"); err != nil {
		return "", err
	}

	for _, name := range data.PulledStages {
		line := p.Sprintf("  * %s: missing\n", name)
		if pulled.Exists(name) {
			manifest, err := pulled.Manifest(name)
			if err != nil {
				line = p.Sprintf("  * %s: present (no manifest)\n", name)
			} else {
				line = p.Sprintf("  * %s: %d rows, %s, written %s%s\n", name, manifest.NumRows,
					manifest.DateRange, timeago.English.Format(manifest.WrittenAt), staleMarker(manifest, dateRange))
			}
		}

		if _, err := builder.WriteString(line); err != nil {
			return "", err
		}
	}

	units := data.StatsUnits()
	present := 0
	var lastWritten time.Time
	for _, unit := range units {
		if !statistics.Exists(unit.Name()) {
			continue
		}

		present++
		if manifest, err := statistics.Manifest(unit.Name()); err == nil && manifest.WrittenAt.After(lastWritten) {
			lastWritten = manifest.WrittenAt
		}
	}

	if _, err := builder.WriteString("\n## Statistics\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Units: %d of %d\n", present, len(units))); err != nil {
		return "", err
	}

	if lastWritten.Equal(time.Time{}) {
		if _, err := builder.WriteString("  * Last Computed: Never\n"); err != nil {
			return "", err
		}
	} else {
		if _, err := builder.WriteString(fmt.Sprintf("  * Last Computed: %s (%s)\n", timeago.English.Format(lastWritten),
			lastWritten.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}

func staleMarker(manifest *cache.Manifest, dateRange data.DateRange) string {
	if manifest.DateRange != dateRange {
		return " **(stale)**"
	}

	return ""
}
