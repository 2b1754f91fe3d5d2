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
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbenders/weekly-listens/internal/store"
)

// addSimilarityCmd represents the add-similarity command
var addSimilarityCmd = &cobra.Command{
	Use:   "add-similarity <track-id> <related-id> <score>",
	Short: "Records a track similarity edge used for recommendations",
	Long: `Similarity scores are computed outside this tool; this loads one edge
into the local database. Re-adding an edge replaces its score.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		err := addSimilarity(viper.GetString("database"), args[0], args[1], args[2])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(addSimilarityCmd)
}

func addSimilarity(dbPath string, trackID string, relatedID string, scoreArg string) error {
	score, err := strconv.ParseFloat(scoreArg, 64)
	if err != nil {
		return fmt.Errorf("parsing score: %w", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.AddTrackSimilarity(trackID, relatedID, score); err != nil {
		return err
	}

	fmt.Printf("Recorded similarity %q -> %q (%.3f)\n", trackID, relatedID, score)
	return nil
}
