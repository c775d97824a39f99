// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koreaquant/krdata/db"
)

// initCmd creates or upgrades the database schema
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or upgrade the krdata database schema",
	Run: func(cmd *cobra.Command, args []string) {
		err := db.Migrate(viper.GetString("dbUrl"))
		if err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info().Msg("database schema is already up to date")
				return
			}
			log.Fatal().Err(err).Msg("database migration failed")
		}

		log.Info().Msg("database schema created")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
