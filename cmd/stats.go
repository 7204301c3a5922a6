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
	"time"

	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var skipTables bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute descriptive statistics for every indicator, dimension, and horizon",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		startTime := time.Now()

		units, err := myPipeline.ComputeStats(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute statistics")
		}

		log.Info().Int("NumUnits", len(units)).Str("Dir", cfg.StatsDir()).Msg("statistics saved")

		if !skipTables {
			if err := myPipeline.RenderTables(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not render tables")
			}

			log.Info().Str("Dir", cfg.TablesDir()).Msg("tables rendered")
		}

		log.Info().Str("RunTime", durafmt.Parse(time.Since(startTime)).String()).Msg("stats complete")
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&skipTables, "skip-tables", false, "do not render LaTeX, CSV, and workbook tables")
}
