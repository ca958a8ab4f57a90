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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ademuri/stream-etl/internal/pipeline"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [raw-file]",
	Short: "Cleans a raw streams file into the silver table",
	Long:  `Reads a raw streams artifact (default: today's), drops in-progress plays, parses dates, derives time buckets and the top-artist grouping, and writes the cleaned streams artifact.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cleanStreams(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func cleanStreams(args []string) error {
	p := newPipeline()

	path := p.RawStreamsPath()
	if len(args) > 0 {
		path = args[0]
	}

	rows, err := pipeline.ReadRawStreams(path)
	if err != nil {
		return err
	}

	cleaned, err := p.CleanStreams(rows)
	if err != nil {
		return err
	}
	fmt.Printf("Cleaned %d streams\n", len(cleaned))
	return nil
}
