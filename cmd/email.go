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

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/stream-etl/internal/artifact"
)

type EmailConfig struct {
	From   string
	To     string
	Date   string
	Num    int
	DryRun bool
}

// emailCmd represents the email command
var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Emails a top-artists summary of an aggregate streams file",
	Long:  `Emails the most-played artists from a run's aggregate streams artifact to the given address.`,
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("dryRun") {
			return nil
		}
		return requireConfig("from", "sendgrid_api_key")
	},
	Run: func(cmd *cobra.Command, args []string) {
		date, _ := cmd.Flags().GetString("date")
		num, _ := cmd.Flags().GetInt("num")

		config := EmailConfig{
			From:   viper.GetString("from"),
			To:     args[0],
			Date:   date,
			Num:    num,
			DryRun: viper.GetBool("dryRun"),
		}

		if err := emailSummary(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().Int("num", 20, "Number of artists to include")
	emailCmd.Flags().String("date", "", "Run date of the aggregate file to read (e.g. 2024_01_02), defaults to today")
}

func emailSummary(config EmailConfig) error {
	p, err := pipelineForDate(config.Date)
	if err != nil {
		return err
	}

	summary, err := getTopArtists(config.Date, config.Num)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Streaming summary for %s", artifact.Stamp(p.RunDate))
	body := emailBody(summary)

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, summary)
		return nil
	}

	from := mail.NewEmail("stream-etl", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, summary.String(), body)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	if _, err := client.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	fmt.Printf("Sent summary to %s\n", config.To)
	return nil
}

func emailBody(summary Summary) string {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	out += summary.HTML()
	out += `  </body>
</html>
`
	return out
}
