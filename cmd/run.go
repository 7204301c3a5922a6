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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvesg/backblaze"
	"github.com/penny-vault/pvesg/healthcheck"
	"github.com/penny-vault/pvesg/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var upload bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage of the study",
	Long: `The run sub-command executes the complete study in order: pull the three
sources, merge them into a daily panel, compute descriptive statistics, and
render tables. Stages with a cached artifact are read from disk unless
--use-cache=false. If a healthchecks.io ping URL is configured the run is
reported to it, and with --upload the statistics and tables are copied to
the configured Backblaze bucket.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()
		cfg := loadConfig()

		myPipeline, client := newPipeline(cfg)
		defer client.Close()

		runLogger := log.With().Str("RunID", myPipeline.RunID.String()).Logger()
		ctx = runLogger.WithContext(ctx)

		check := healthcheck.New(cfg.HealthcheckURL, myPipeline.RunID)
		if err := check.Start(ctx); err != nil {
			runLogger.Warn().Err(err).Msg("could not signal run start to healthcheck")
		}

		summary, err := myPipeline.Run(ctx)
		if err != nil {
			if pingErr := check.Fail(ctx, err); pingErr != nil {
				runLogger.Warn().Err(pingErr).Msg("could not signal run failure to healthcheck")
			}
			runLogger.Fatal().Err(err).Msg("run failed")
		}

		report := renderRunSummary(summary)

		if upload {
			prefix := backblaze.RunPrefix(cfg.DateRange(), myPipeline.RunID)
			files, err := backblaze.ArtifactFiles(cfg.StatsDir(), cfg.TablesDir())
			if err != nil {
				runLogger.Fatal().Err(err).Msg("could not list artifacts")
			}

			if err := backblaze.Upload(ctx, cfg.Backblaze, prefix, files); err != nil {
				runLogger.Fatal().Err(err).Msg("could not upload artifacts")
			}

			runLogger.Info().Str("Prefix", prefix).Int("NumFiles", len(files)).Msg("artifacts uploaded")
		}

		if err := check.Success(ctx, report); err != nil {
			runLogger.Warn().Err(err).Msg("could not signal run success to healthcheck")
		}

		fmt.Println(
			lipgloss.NewStyle().
				Width(60).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(1, 2).
				Render(report),
		)
	},
}

// renderRunSummary formats the stage results of a run for the terminal
func renderRunSummary(summary *pipeline.RunSummary) string {
	var sb strings.Builder
	p := message.NewPrinter(language.English)

	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	fmt.Fprintf(&sb, "%s\n\nID: %s\nRun Time: %s\n\n",
		lipgloss.NewStyle().Bold(true).Render("RUN COMPLETE"),
		keyword(summary.RunID.String()),
		keyword(durafmt.Parse(summary.EndTime.Sub(summary.StartTime)).LimitFirstN(2).String()),
	)

	fmt.Fprint(&sb, lipgloss.NewStyle().Bold(true).Render("Stages"))
	for _, stage := range summary.Stages {
		fmt.Fprintf(&sb, "\n%s: %s (%s)", stage.Name,
			keyword(p.Sprintf("%d", stage.NumRows)),
			durafmt.Parse(stage.Elapsed.Round(time.Millisecond)).LimitFirstN(1).String())
	}

	return sb.String()
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&upload, "upload", false, "upload statistics and tables to backblaze")
}
