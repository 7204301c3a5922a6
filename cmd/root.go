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

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/config"
	"github.com/penny-vault/pvesg/pipeline"
	"github.com/penny-vault/pvesg/wrds"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	useCache     bool
	persistCache bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvesg",
	Short: "pvesg studies the relationship between ESG incidents and securities lending",
	Long: `pvesg is a command line utility that assembles a daily panel of
securities lending activity, shares outstanding, and ESG incident data and
summarizes it with descriptive statistics.

Three sources are pulled from Wharton Research Data Services (WRDS):

	* CRSP daily shares outstanding
	* Markit securities lending analytics
	* RepRisk ESG incidents

Every stage writes a parquet artifact under the data directory so later
runs can skip the pull. Statistics are written as LaTeX and CSV tables
along with an Excel workbook under the output directory.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvesg.toml)")
	rootCmd.PersistentFlags().BoolVar(&useCache, "use-cache", true, "read stage artifacts from the data directory when present")
	rootCmd.PersistentFlags().BoolVar(&persistCache, "persist-cache", true, "write stage artifacts to the data directory")

	rootCmd.PersistentFlags().String("start-date", "", "first day of the study (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("end-date", "", "last day of the study (YYYY-MM-DD)")
	for flag, key := range map[string]string{"start-date": "start_date", "end-date": "end_date"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("Flag", flag).Msg("BindPFlag failed")
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvesg" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvesg")
	}

	config.SetDefaults(viper.GetViper())
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}

	if level, err := zerolog.ParseLevel(viper.GetString("log.level")); err == nil {
		zerolog.SetGlobalLevel(level)
	}
}

// loadConfig builds the run configuration or exits
func loadConfig() *config.Config {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	return cfg
}

// newContext returns a context carrying the global logger
func newContext() context.Context {
	return log.Logger.WithContext(context.Background())
}

func cacheOptions() cache.Options {
	return cache.Options{
		UseCache:     useCache,
		PersistCache: persistCache,
	}
}

// newPipeline returns a pipeline for cfg along with the WRDS client it
// queries. Callers must close the client.
func newPipeline(cfg *config.Config) (*pipeline.Pipeline, *wrds.Client) {
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatal().Err(err).Msg("could not create output directories")
	}

	client := wrds.New(cfg.WRDS)
	return pipeline.New(cfg, client, cacheOptions()), client
}
