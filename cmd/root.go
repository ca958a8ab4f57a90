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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/stream-etl/internal/artifact"
	"github.com/ademuri/stream-etl/internal/pipeline"
)

var cfgFile string
var lastFmApiKey string
var lastFmSecret string
var lastFmUser string
var spotifyClientId string
var spotifyClientSecret string
var dataDir string
var databasePath string
var sendgridApiKey string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stream-etl",
	Short: "Extracts, enriches, and aggregates last.fm listening data",
	Long: `Runs a batch pipeline over last.fm listening history: extract raw
streams, enrich them with Spotify audio features, clean them, and aggregate
them into per-day artist views. Each stage writes a dated CSV artifact.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.stream-etl.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&lastFmApiKey, "api_key", "", "", "last.fm API key")
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api_key"))

	rootCmd.PersistentFlags().StringVarP(
		&lastFmSecret, "secret", "", "", "last.fm secret (only needed for private listening data)")
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))

	rootCmd.PersistentFlags().StringVarP(
		&lastFmUser, "user", "u", "", "last.fm username to act on")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyClientId, "spotify_id", "", "Spotify client ID")
	viper.BindPFlag("spotify_id", rootCmd.PersistentFlags().Lookup("spotify_id"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyClientSecret, "spotify_secret", "", "Spotify client secret")
	viper.BindPFlag("spotify_secret", rootCmd.PersistentFlags().Lookup("spotify_secret"))

	rootCmd.PersistentFlags().StringVar(
		&dataDir, "data_dir", "./data", "Directory for the pipeline's CSV artifacts")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data_dir"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./streams.db", "Path to the SQLite listen archive")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(&sendgridApiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))

	var from string
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".stream-etl" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".stream-etl")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// requireConfig fails before any network call when credential keys the
// invoked command depends on are missing.
func requireConfig(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if viper.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// newPipeline builds a pipeline for a run starting now. The run date is
// computed once here and stamps every artifact the run writes.
func newPipeline() *pipeline.Pipeline {
	return pipeline.New(viper.GetString("data_dir"), time.Now())
}

// pipelineForDate builds a pipeline addressing an earlier run's artifacts.
// An empty date means today.
func pipelineForDate(date string) (*pipeline.Pipeline, error) {
	if date == "" {
		return newPipeline(), nil
	}
	runDate, err := artifact.ParseStamp(date)
	if err != nil {
		return nil, err
	}
	return pipeline.New(viper.GetString("data_dir"), runDate), nil
}
