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
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seriesOutput string

// seriesCmd represents the series command
var seriesCmd = &cobra.Command{
	Use:   "series [cusip...]",
	Short: "Export the daily lending indicators of individual securities",
	Long: `The series sub-command writes the daily short interest, loan supply,
utilisation, and fee of each security to a CSV file. Securities are
identified by CUSIP (8 or 9 characters). With no arguments Apple and
GameStop are exported.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		cusips := args
		if len(cusips) == 0 {
			cusips = []string{"037833100", "36467W109"}
		}

		fn := seriesOutput
		if fn == "" {
			fn = filepath.Join(cfg.OutputDir, "series.csv")
		}

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		fh, err := os.Create(fn)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", fn).Msg("could not create series file")
		}
		defer fh.Close()

		numRows, err := myPipeline.ExportSeries(ctx, fh, cusips)
		if err != nil {
			log.Fatal().Err(err).Msg("could not export series")
		}

		log.Info().Strs("CUSIPs", cusips).Int("NumRows", numRows).Str("FileName", fn).Msg("series exported")
	},
}

func init() {
	rootCmd.AddCommand(seriesCmd)
	seriesCmd.Flags().StringVarP(&seriesOutput, "output", "o", "", "output file (default is <output_dir>/series.csv)")
}
