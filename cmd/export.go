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
	"github.com/penny-vault/pvesg/library"
	"github.com/penny-vault/pvesg/stats"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the merged panel and statistics to the results library",
	Long: `The export sub-command copies the merged panel and the most recently
computed statistics into the PostgreSQL library configured by 'pvesg init'
or LIBRARY_DB_URL. Run 'pvesg stats' first.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		if cfg.LibraryDBUrl == "" {
			log.Fatal().Msg("no library configured; run `pvesg init` or set LIBRARY_DB_URL")
		}

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		panel, err := myPipeline.MergeAll(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load merged panel")
		}

		units, err := stats.Load(ctx, myPipeline.StatsStore())
		if err != nil {
			log.Fatal().Err(err).Msg("could not load statistics; run `pvesg stats` first")
		}

		myLibrary, err := library.NewFromDB(ctx, cfg.LibraryDBUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		if err := myLibrary.SaveRun(ctx, myPipeline.RunID, cfg.DateRange(), panel, units); err != nil {
			log.Fatal().Err(err).Msg("could not export run")
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
