/*
Copyright 2026 Google LLC

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

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbenders/weekly-listens/internal/analysis"
	"github.com/mbenders/weekly-listens/internal/store"
)

type SendEmailConfig struct {
	DbPath         string
	User           string
	From           string
	To             string
	WeekEnding     string
	DryRun         bool
	SendgridApiKey string
}

// emailCmd represents the email command
var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Emails a stored weekly report",
	Long: `Sends the user's most recent weekly report to the given address, or a
specific week's report with --week-ending.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !viper.GetBool("emailDryRun") && viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendEmailConfig{
			DbPath:         viper.GetString("database"),
			User:           viper.GetString("user"),
			From:           viper.GetString("from"),
			To:             args[0],
			WeekEnding:     viper.GetString("email-week-ending"),
			DryRun:         viper.GetBool("emailDryRun"),
			SendgridApiKey: viper.GetString("sendgrid_api_key"),
		}
		err := sendEmail(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("emailDryRun", emailCmd.Flags().Lookup("dry_run"))

	var weekEnding string
	emailCmd.Flags().StringVar(&weekEnding, "week-ending", "", "Week to send, in yyyy-mm-dd format (default most recent)")
	viper.BindPFlag("email-week-ending", emailCmd.Flags().Lookup("week-ending"))
}

func sendEmail(config SendEmailConfig) error {
	user := strings.ToLower(config.User)
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var report *analysis.WeeklyReport
	if config.WeekEnding != "" {
		weekEnding, err := parseWeekEnding(config.WeekEnding)
		if err != nil {
			return err
		}
		report, err = db.GetReport(user, weekEnding)
		if err != nil {
			return err
		}
	} else {
		report, err = db.LatestReport(user)
		if err != nil {
			return err
		}
	}

	subject, body := reportHTML(report)

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}

	if config.SendgridApiKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("weekly-listens", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, renderReport(report), body)
	client := sendgrid.NewSendClient(config.SendgridApiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", response.StatusCode, response.Body)
	}

	fmt.Printf("Sent report to %s\n", config.To)
	return nil
}
