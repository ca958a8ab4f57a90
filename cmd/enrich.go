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

	"github.com/ademuri/stream-etl/internal/pipeline"
	"github.com/ademuri/stream-etl/internal/spotify"
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich [raw-file]",
	Short: "Adds Spotify audio features to a raw streams file",
	Long:  `Reads a raw streams artifact (default: today's) and writes it back alongside per-track audio features looked up from the Spotify catalog.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("spotify_id", "spotify_secret")
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := enrichStreams(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func enrichStreams(args []string) error {
	p := newPipeline()

	path := p.RawStreamsPath()
	if len(args) > 0 {
		path = args[0]
	}

	rows, err := pipeline.ReadRawStreams(path)
	if err != nil {
		return err
	}

	client, err := spotify.NewClient(spotify.Config{
		ClientID:     viper.GetString("spotify_id"),
		ClientSecret: viper.GetString("spotify_secret"),
	})
	if err != nil {
		return err
	}
	p.Enricher = client

	_, err = p.GetAudioFeatures(context.Background(), rows)
	return err
}
