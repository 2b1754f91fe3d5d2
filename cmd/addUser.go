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

// addUserCmd represents the add-user command
var addUserCmd = &cobra.Command{
	Use:   "add-user <refresh-token>",
	Short: "Registers a user with their Spotify refresh token",
	Long: `Stores the refresh token used to fetch the user's listening history.
Running it again for an existing user replaces the token.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := addUser(viper.GetString("database"), viper.GetString("user"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(addUserCmd)
}

func addUser(dbPath string, user string, refreshToken string) error {
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}
	user = strings.ToLower(user)

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.CreateUser(user, refreshToken); err != nil {
		return err
	}

	fmt.Printf("Registered user %q\n", user)
	return nil
}
