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

	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/stats"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding every indicator of a dimension and
// horizon, e.g. "severity" or "severity_change_5"
func SheetName(unit data.StatsUnit) string {
	if unit.Horizon == 0 {
		return string(unit.Dimension)
	}

	return fmt.Sprintf("%s_change_%d", unit.Dimension, unit.Horizon)
}

// Workbook lays out the statistics units in a spreadsheet with one sheet per
// dimension and horizon. Each indicator is a block of rows headed by its
// name. The caller must close the returned file.
func Workbook(units []*stats.Unit) (*excelize.File, error) {
	f := excelize.NewFile()

	nextRow := make(map[string]int)
	order := make([]string, 0)
	for _, unit := range units {
		sheet := SheetName(unit.StatsUnit)
		row, ok := nextRow[sheet]
		if !ok {
			if len(order) == 0 {
				if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
					return nil, err
				}
			} else if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
			order = append(order, sheet)
			row = 1
		}

		last, err := writeBlock(f, sheet, row, unit)
		if err != nil {
			return nil, err
		}
		nextRow[sheet] = last + 2
	}

	return f, nil
}

func writeBlock(f *excelize.File, sheet string, row int, unit *stats.Unit) (int, error) {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellValue(sheet, cell, string(unit.Indicator)); err != nil {
		return 0, err
	}
	row++

	header := []interface{}{string(unit.Dimension)}
	for _, summary := range unit.Stats {
		header = append(header, summary.Group)
	}
	if err := setRow(f, sheet, row, header); err != nil {
		return 0, err
	}

	for _, name := range data.StatisticNames {
		row++
		values := []interface{}{name}
		for _, summary := range unit.Stats {
			if val := summary.Statistic(name); val != nil {
				values = append(values, *val)
			} else {
				values = append(values, nil)
			}
		}

		if err := setRow(f, sheet, row, values); err != nil {
			return 0, err
		}
	}

	return row, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	return f.SetSheetRow(sheet, cell, &values)
}
