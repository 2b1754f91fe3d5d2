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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mbenders/weekly-listens/internal/analysis"
	"github.com/mbenders/weekly-listens/internal/store"
)

type WeeklyConfig struct {
	DbPath     string
	User       string
	WeekEnding string
	Format     string
	DryRun     bool
}

// weeklyCmd represents the weekly command
var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generates the weekly listening report",
	Long: `Derives patterns, mood playlists, insights, and recommendations from
the past week of stored listening data, and persists the report.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := WeeklyConfig{
			DbPath:     viper.GetString("database"),
			User:       viper.GetString("user"),
			WeekEnding: viper.GetString("week-ending"),
			Format:     viper.GetString("format"),
			DryRun:     viper.GetBool("weeklyDryRun"),
		}

		err := runWeekly(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(weeklyCmd)

	var weekEnding string
	weeklyCmd.Flags().StringVar(&weekEnding, "week-ending", "", "End of the report window in yyyy-mm-dd format (default now)")
	viper.BindPFlag("week-ending", weeklyCmd.Flags().Lookup("week-ending"))

	var format string
	weeklyCmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or table")
	viper.BindPFlag("format", weeklyCmd.Flags().Lookup("format"))

	var dryRun bool
	weeklyCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, print the report without persisting it")
	viper.BindPFlag("weeklyDryRun", weeklyCmd.Flags().Lookup("dry_run"))
}

func runWeekly(config WeeklyConfig) error {
	user := strings.ToLower(config.User)
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	engine := &analysis.Engine{
		Events:  db,
		Similar: db,
		Popular: db,
		Sink:    db,
	}
	if config.DryRun {
		engine.Sink = nil
	}
	if config.WeekEnding != "" {
		weekEnding, err := parseWeekEnding(config.WeekEnding)
		if err != nil {
			return err
		}
		engine.Now = func() time.Time { return weekEnding }
	}

	report, err := engine.ProduceWeeklyReport(context.Background(), user)
	if err != nil {
		return err
	}

	return printReport(report, config.Format)
}

func printReport(report *analysis.WeeklyReport, format string) error {
	switch format {
	case "table":
		fmt.Print(renderReport(report))
	case "yaml":
		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Print(string(out))
	default:
		return fmt.Errorf("invalid format %q: must be yaml or table", format)
	}
	return nil
}
