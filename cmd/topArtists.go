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

// topArtistsCmd represents the top-artists command
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists",
	Short: "Prints the most-played artists from an aggregate streams file",
	Run: func(cmd *cobra.Command, args []string) {
		date, _ := cmd.Flags().GetString("date")
		num, _ := cmd.Flags().GetInt("num")

		summary, err := getTopArtists(date, num)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Print(summary)
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntP("num", "n", 20, "Number of artists to show")
	topArtistsCmd.Flags().String("date", "", "Run date of the aggregate file to read (e.g. 2024_01_02), defaults to today")
}

func getTopArtists(date string, num int) (Summary, error) {
	p, err := pipelineForDate(date)
	if err != nil {
		return Summary{}, err
	}

	rows, err := pipeline.ReadAggregates(p.AggregatePath())
	if err != nil {
		return Summary{}, err
	}

	return topArtistsSummary(rows, num), nil
}
