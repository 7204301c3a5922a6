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
	"io"
	"strings"

	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/stats"
)

const floatFormat = "%.4f"

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"%", `\%`,
	"&", `\&`,
	"_", `\_`,
	"#", `\#`,
	"$", `\$`,
	"{", `\{`,
	"}", `\}`,
)

func escapeLaTeX(val string) string {
	return latexEscaper.Replace(val)
}

func formatValue(val *float64) string {
	if val == nil {
		return "NaN"
	}

	return fmt.Sprintf(floatFormat, *val)
}

// LaTeX renders a statistics unit as a booktabs tabular. Each statistic is a
// row and each dimension value a column.
func LaTeX(unit *stats.Unit) string {
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("\\begin{tabular}{l%s}\n", strings.Repeat("r", len(unit.Stats))))
	builder.WriteString("\\toprule\n")

	header := []string{escapeLaTeX(string(unit.Dimension))}
	for _, summary := range unit.Stats {
		header = append(header, escapeLaTeX(summary.Group))
	}
	builder.WriteString(strings.Join(header, " & "))
	builder.WriteString(" \\\\\n\\midrule\n")

	for _, name := range data.StatisticNames {
		cells := []string{escapeLaTeX(name)}
		for _, summary := range unit.Stats {
			cells = append(cells, formatValue(summary.Statistic(name)))
		}
		builder.WriteString(strings.Join(cells, " & "))
		builder.WriteString(" \\\\\n")
	}

	builder.WriteString("\\bottomrule\n")
	builder.WriteString("\\end{tabular}\n")

	return builder.String()
}

// WriteLaTeX writes the rendered table for unit to w
func WriteLaTeX(w io.Writer, unit *stats.Unit) error {
	_, err := io.WriteString(w, LaTeX(unit))
	return err
}
