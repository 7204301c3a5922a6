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
package cmd

import (
	"github.com/penny-vault/pvesg/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// tablesCmd represents the tables command
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Render previously computed statistics as LaTeX, CSV, and Excel tables",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		if err := myPipeline.RenderTables(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not render tables; run `pvesg stats` first")
		}

		log.Info().Str("Dir", cfg.TablesDir()).Str("Workbook", report.WorkbookName).Msg("tables rendered")
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
