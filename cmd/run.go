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
	"github.com/ademuri/stream-etl/internal/spotify"
	"github.com/ademuri/stream-etl/internal/store"
)

type RunConfig struct {
	User         string
	Limit        int
	SkipFeatures bool
	Archive      bool
	DbPath       string
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the full pipeline: extract, enrich, clean, aggregate",
	Long: `Fetches listening history from last.fm, looks up Spotify audio features,
cleans the streams, and aggregates them, writing every intermediate artifact
for today's run. --skip-features skips the Spotify lookup stage.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig("api_key", "user"); err != nil {
			return err
		}
		if skip, _ := cmd.Flags().GetBool("skip-features"); skip {
			return nil
		}
		return requireConfig("spotify_id", "spotify_secret")
	},
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		skipFeatures, _ := cmd.Flags().GetBool("skip-features")
		archive, _ := cmd.Flags().GetBool("archive")

		config := RunConfig{
			User:         viper.GetString("user"),
			Limit:        limit,
			SkipFeatures: skipFeatures,
			Archive:      archive,
			DbPath:       viper.GetString("database"),
		}

		if err := runPipeline(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("limit", 0, "Maximum number of tracks to extract (0 means all)")
	runCmd.Flags().Bool("skip-features", false, "Skip the Spotify audio features stage")
	runCmd.Flags().Bool("archive", false, "Also record fetched listens in the SQLite archive")
}

func runPipeline(config RunConfig) error {
	p := newPipeline()
	p.Source = lastfm.NewSource(viper.GetString("api_key"), viper.GetString("secret"), config.User)

	if !config.SkipFeatures {
		client, err := spotify.NewClient(spotify.Config{
			ClientID:     viper.GetString("spotify_id"),
			ClientSecret: viper.GetString("spotify_secret"),
		})
		if err != nil {
			return err
		}
		p.Enricher = client
	}

	if config.Archive {
		db, err := store.New(config.DbPath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()
		p.Archive = db
	}

	ctx := context.Background()

	raw, err := p.GetStreams(ctx, config.Limit)
	if err != nil {
		return err
	}

	if !config.SkipFeatures {
		if _, err := p.GetAudioFeatures(ctx, raw); err != nil {
			return err
		}
	}

	cleaned, err := p.CleanStreams(raw)
	if err != nil {
		return err
	}

	aggregates, err := p.AggregateData(cleaned)
	if err != nil {
		return err
	}

	fmt.Printf("Pipeline complete: %d streams, %d cleaned, %d aggregate rows\n",
		len(raw), len(cleaned), len(aggregates))
	return nil
}
