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
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/config"
	"github.com/penny-vault/pvesg/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xeonx/timeago"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers <name>",
	Short: "List all providers available or get details about a specific provider",
	Run: func(cmd *cobra.Command, args []string) {

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}

		if len(args) > 0 {
			dataProvider, err := provider.Get(args[0])
			if err != nil {
				log.Fatal().Err(err).Str("Provider", args[0]).Msg("unknown provider")
			}

			// an unreadable config only hides cache status
			var artifacts map[string]*cache.Manifest
			if cfg, err := config.FromViper(viper.GetViper()); err == nil {
				artifacts = provider.Artifacts(cache.NewStore(cfg.PulledDir(), cfg.Cache.IgnoreDateRange, uuid.Nil))
			}

			builder.WriteString(fmt.Sprintf("# %s\n", dataProvider.Name()))
			builder.WriteString(dataProvider.Description())
			builder.WriteString("\n\n## Datasets\n")

			datasets := dataProvider.Datasets()
			keys := make([]string, 0, len(datasets))
			for k := range datasets {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				dataset := datasets[k]
				start, end := dataset.DateRange()
				builder.WriteString(fmt.Sprintf("- %s (%s to %s): %s\n", dataset.Name, start.Format("2006-01-02"), end.Format("2006-01-02"), dataset.Description))
				builder.WriteString(fmt.Sprintf("  - Tables: %s\n", strings.Join(dataset.Tables, ", ")))

				if manifest, ok := artifacts[dataset.Artifact]; ok {
					builder.WriteString(fmt.Sprintf("  - Cached: %d rows, %s, written %s\n", manifest.NumRows, manifest.DateRange, timeago.English.Format(manifest.WrittenAt)))
				} else {
					builder.WriteString("  - Cached: no\n")
				}
			}
		} else {
			builder.WriteString("# Available Providers\n")
			for _, name := range provider.Names() {
				dataProvider := provider.Map[name]
				builder.WriteString(fmt.Sprintf("\n## %s\n", dataProvider.Name()))
				builder.WriteString(dataProvider.Description())
			}
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render provider document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
