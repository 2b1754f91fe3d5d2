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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbenders/weekly-listens/internal/store"
)

// deleteReportCmd represents the delete-report command
var deleteReportCmd = &cobra.Command{
	Use:   "delete-report <week-ending>",
	Short: "Deletes a stored weekly report",
	Long:  `Deletes the user's report for the given week, in yyyy-mm-dd format.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := deleteReport(viper.GetString("database"), viper.GetString("user"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteReportCmd)
}

func deleteReport(dbPath string, user string, weekEndingArg string) error {
	user = strings.ToLower(user)
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}
	weekEnding, err := parseWeekEnding(weekEndingArg)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	deleted, err := db.DeleteReport(user, weekEnding)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no report for %q week ending %s", user, weekEnding.Format("2006-01-02"))
	}

	fmt.Printf("Deleted report for %q week ending %s\n", user, weekEnding.Format("2006-01-02"))
	return nil
}
