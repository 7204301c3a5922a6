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
	"context"
	"os"
	"path/filepath"

	"github.com/penny-vault/pvesg/stats"
	"github.com/rs/zerolog"
)

const WorkbookName = "stats.xlsx"

// WriteTables renders every unit to dir as a LaTeX table and a CSV file,
// named after the unit with spaces escaped, and writes the combined
// workbook. Existing files are overwritten.
func WriteTables(ctx context.Context, dir string, units []*stats.Unit) error {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, unit := range units {
		base := filepath.Join(dir, unit.TableName())
		if err := writeFile(base+".tex", func(fh *os.File) error { return WriteLaTeX(fh, unit) }); err != nil {
			return err
		}

		if err := writeFile(base+".csv", func(fh *os.File) error { return WriteCSV(fh, unit) }); err != nil {
			return err
		}
	}

	workbook, err := Workbook(units)
	if err != nil {
		return err
	}
	defer workbook.Close()

	if err := workbook.SaveAs(filepath.Join(dir, WorkbookName)); err != nil {
		return err
	}

	logger.Info().Int("NumTables", len(units)).Str("Dir", dir).Msg("rendered tables")
	return nil
}

func writeFile(fn string, write func(*os.File) error) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}

	if err := write(fh); err != nil {
		fh.Close()
		return err
	}

	return fh.Close()
}
