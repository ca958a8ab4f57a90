/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/stream-etl/internal/lastfm"
	"github.com/ademuri/stream-etl/internal/store"
)

type ExtractConfig struct {
	User    string
	Limit   int
	Archive bool
	DbPath  string
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetches listening history from last.fm",
	Long:  `Writes the raw streams artifact for today's run. With --archive, also records the listens in the local SQLite archive.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("api_key", "user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		archive, _ := cmd.Flags().GetBool("archive")

		config := ExtractConfig{
			User:    viper.GetString("user"),
			Limit:   limit,
			Archive: archive,
			DbPath:  viper.GetString("database"),
		}

		if err := extractStreams(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Int("limit", 0, "Maximum number of tracks to extract (0 means all)")
	extractCmd.Flags().Bool("archive", false, "Also record fetched listens in the SQLite archive")
}

func extractStreams(config ExtractConfig) error {
	p := newPipeline()
	p.Source = lastfm.NewSource(viper.GetString("api_key"), viper.GetString("secret"), config.User)

	if config.Archive {
		db, err := store.New(config.DbPath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()
		p.Archive = db

		defer func() {
			if count, err := db.ListenCount(); err == nil {
				fmt.Printf("Archive now holds %d listens\n", count)
			}
		}()
	}

	_, err := p.GetStreams(context.Background(), config.Limit)
	return err
}
