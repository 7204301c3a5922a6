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

var ratiosOnly bool

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge lending, shares outstanding, and ESG data into a daily panel",
	Long: `The merge sub-command joins Markit lending records with CRSP shares
outstanding to compute the lending ratios and then attaches RepRisk
incidents. Source data is pulled first when it is not cached.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		startTime := time.Now()

		ratios, err := myPipeline.MergeMarkitCRSP(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not merge markit and crsp")
		}

		log.Info().Int("NumRows", len(ratios)).Msg("lending ratios ready")

		if !ratiosOnly {
			merged, err := myPipeline.MergeAll(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("could not merge reprisk")
			}

			log.Info().Int("NumRows", len(merged)).Msg("merged panel ready")
		}

		log.Info().Str("RunTime", durafmt.Parse(time.Since(startTime)).String()).Msg("merge complete")
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().BoolVar(&ratiosOnly, "ratios-only", false, "stop after the markit and crsp merge")
}
