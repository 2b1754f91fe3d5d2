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
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbenders/weekly-listens/internal/store"
)

// listReportsCmd represents the list-reports command
var listReportsCmd = &cobra.Command{
	Use:   "list-reports",
	Short: "Lists stored weekly reports for the user",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		err := listReports(viper.GetString("database"), viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listReportsCmd)
}

func listReports(dbPath string, user string) error {
	user = strings.ToLower(user)
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	summaries, err := db.ListReports(user)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tWEEK ENDING\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			s.User, s.WeekEnding.Format("2006-01-02"), s.Created.Format("2006-01-02 15:04"))
	}
	w.Flush()
	return nil
}
