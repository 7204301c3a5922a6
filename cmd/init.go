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
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/pvesg/config"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/db"
	"github.com/penny-vault/pvesg/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func validateDate(val string) error {
	_, err := time.Parse(data.DayLayout, val)
	return err
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather study configuration and optionally setup the library schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var (
			startDate = config.DefaultStartDate
			endDate   = config.DefaultEndDate
		)

		cfg := &config.Config{
			DataDir:   config.DefaultDataDir,
			OutputDir: config.DefaultOutputDir,
			WRDS: config.WRDS{
				Host:              config.DefaultWRDSHost,
				Port:              config.DefaultWRDSPort,
				RequestsPerMinute: 60,
			},
			Cache:    config.Cache{IgnoreDateRange: true},
			LogLevel: "info",
		}

		myLibrary := &library.Library{}

		form := huh.NewForm(
			// Where the study reads and writes files
			huh.NewGroup(
				huh.NewInput().
					Title("Directory for cached data:").
					Value(&cfg.DataDir),

				huh.NewInput().
					Title("Directory for statistics and tables:").
					Value(&cfg.OutputDir),
			),

			// WRDS account and study window
			huh.NewGroup(
				huh.NewInput().
					Title("WRDS username:").
					Value(&cfg.WRDS.Username),

				huh.NewInput().
					Title("First day of the study (YYYY-MM-DD):").
					Value(&startDate).
					Validate(validateDate),

				huh.NewInput().
					Title("Last day of the study (YYYY-MM-DD):").
					Value(&endDate).
					Validate(validateDate),
			),

			// Optional results library
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN of a PostgreSQL database to export results to (leave blank to skip)").
					Value(&myLibrary.DBUrl).
					Validate(func(dsn string) error {
						if dsn == "" {
							return nil
						}
						_, err := pgx.ParseConfig(dsn)
						return err
					}),

				huh.NewInput().
					Title("Give the library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		// validated by the form
		cfg.StartDate, _ = time.Parse(data.DayLayout, startDate)
		cfg.EndDate, _ = time.Parse(data.DayLayout, endDate)
		if !cfg.StartDate.Before(cfg.EndDate) {
			log.Fatal().Err(config.ErrInvalidRange).Str("StartDate", startDate).Str("EndDate", endDate).Msg("invalid study window")
		}

		if myLibrary.DBUrl != "" {
			log.Info().Msg("creating database tables")

			if err := db.Migrate(myLibrary.DBUrl); err != nil {
				log.Fatal().Err(err).Msg("error running database migration")
			}

			log.Info().Msg("database tables created")
			log.Info().Msg("Saving library name and owner to database")

			if err := myLibrary.Connect(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
			defer myLibrary.Close()

			if err := myLibrary.SaveDB(ctx); err != nil {
				log.Fatal().Err(err).Msg("error saving library settings to database")
			}

			cfg.LibraryDBUrl = myLibrary.DBUrl
		}

		if err := cfg.EnsureDirs(); err != nil {
			log.Fatal().Err(err).Msg("could not create data directories")
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".pvesg.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := cfg.MarshalTOML()
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("pvesg has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
