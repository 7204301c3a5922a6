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
package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(fmt.Sprintf("Owner: %s\n\n", myLibrary.Owner)); err != nil {
		return "", err
	}

	runs, err := myLibrary.Runs(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Num Runs: %d\n", len(runs))); err != nil {
		return "", err
	}

	totalSecurities, err := myLibrary.TotalSecurities(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Securities: %d\n", totalSecurities)); err != nil {
		return "", err
	}

	totalRecords, err := myLibrary.TotalRecords(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Panel Rows: %d\n\n", totalRecords)); err != nil {
		return "", err
	}

	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		return "", err
	}

	if lastUpdated.Year() <= 1 {
		if _, err := builder.WriteString("Last Updated: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(lastUpdated)
		if _, err := builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, lastUpdated.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString("## Runs\n\n"); err != nil {
		return "", err
	}

	for _, run := range runs {
		if _, err := builder.WriteString(p.Sprintf("  * %s to %s: %d rows, %d units [%s] %s\n",
			run.StartDate.Format("Jan 2006"), run.EndDate.Format("Jan 2006"), run.PanelRows, run.StatsUnits,
			run.ID.String()[:6], timeago.English.Format(run.ExportedOn))); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
