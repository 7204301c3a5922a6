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
	"context"
	"time"

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/pipeline"
	"github.com/penny-vault/pvesg/provider"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// pullCmd represents the pull command
var pullCmd = &cobra.Command{
	Use:   "pull [provider...]",
	Short: "Pull source data from WRDS into the data directory",
	Long: `The pull sub-command loads each named provider (crsp, markit, reprisk)
for the configured date range. With no arguments every provider is pulled.
Providers with a cached artifact are read from disk unless --use-cache=false.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		names := args
		if len(names) == 0 {
			names = []string{data.CRSPKey, data.MarkitKey, data.RepRiskKey}
		}

		for _, name := range names {
			if _, err := provider.Get(name); err != nil {
				log.Fatal().Err(err).Str("Provider", name).Msg("run `pvesg providers` for a complete list of providers")
			}
		}

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		for _, name := range names {
			pullLogger := log.With().Str("Provider", name).Logger()
			startTime := time.Now()

			numRet, err := pullProvider(pullLogger.WithContext(ctx), myPipeline, name)
			if err != nil {
				pullLogger.Fatal().Err(err).Msg("pull failed")
			}

			runTime := time.Since(startTime)
			pullLogger.Info().Str("RunTime", durafmt.Parse(runTime).String()).Int("NumberReturned", numRet).Msg("successfully pulled data")
		}
	},
}

func pullProvider(ctx context.Context, myPipeline *pipeline.Pipeline, name string) (int, error) {
	zerolog.Ctx(ctx).Debug().Stringer("DateRange", myPipeline.Config.DateRange()).Msg("pulling provider")

	switch name {
	case data.CRSPKey:
		rows, err := myPipeline.PullCRSP(ctx)
		return len(rows), err
	case data.MarkitKey:
		rows, err := myPipeline.PullMarkit(ctx)
		return len(rows), err
	case data.RepRiskKey:
		rows, err := myPipeline.PullRepRisk(ctx)
		return len(rows), err
	default:
		return 0, provider.ErrProviderNotFound
	}
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
