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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbenders/weekly-listens/internal/analysis"
	"github.com/mbenders/weekly-listens/internal/store"
)

// runReportsCmd represents the run-reports command
var runReportsCmd = &cobra.Command{
	Use:   "run-reports",
	Short: "Generates weekly reports for all registered users",
	Long: `Produces and persists this week's report for every user in the
database. A failure for one user does not stop the others.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReports(viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runReportsCmd)
}

func runReports(dbPath string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	users, err := db.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users registered")
		return nil
	}

	engine := &analysis.Engine{
		Events:  db,
		Similar: db,
		Popular: db,
		Sink:    db,
	}

	failed := 0
	for _, user := range users {
		report, err := engine.ProduceWeeklyReport(context.Background(), user)
		if err != nil {
			fmt.Printf("Report for %q failed: %v\n", user, err)
			failed++
			continue
		}
		if report.NoData {
			fmt.Printf("No listening data for %q this week\n", user)
			continue
		}
		fmt.Printf("Generated report for %q (week ending %s)\n",
			user, report.WeekEnding.Format("2006-01-02"))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(users))
	}
	return nil
}
