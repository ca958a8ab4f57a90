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

// aggregateCmd represents the aggregate command
var aggregateCmd = &cobra.Command{
	Use:   "aggregate [cleaned-file]",
	Short: "Aggregates cleaned streams into daily per-artist counts",
	Long:  `Reads a cleaned streams artifact (default: today's) and writes the aggregate streams artifact with daily play counts, cumulative totals, and artist tenure.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := aggregateStreams(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}

func aggregateStreams(args []string) error {
	p := newPipeline()

	path := p.CleanedStreamsPath()
	if len(args) > 0 {
		path = args[0]
	}

	rows, err := pipeline.ReadCleanedStreams(path)
	if err != nil {
		return err
	}

	aggregates, err := p.AggregateData(rows)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d aggregate rows\n", len(aggregates))
	return nil
}
