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
	"context"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
	"github.com/koreaquant/krdata/provider"
	"github.com/koreaquant/krdata/screener"
)

var screenOutput string

// screenCmd scans for companies whose projected sales growth accelerates
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen for companies with accelerating projected sales growth",
	Long: `The screen sub-command walks every company in stock_info, pulls the consensus
sales projections for the next three fiscal years and flags companies whose
year-over-year growth is strictly increasing and positive. Companies missing any
projection are discarded. Results are written as CSV.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("dbUrl"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		companies, err := myLibrary.Companies(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load companies")
		}

		if len(companies) == 0 {
			log.Warn().Msg("stock_info is empty; run krx/listed-companies first")
			return
		}

		bootstrapClient := provider.NewClient(15 * time.Second)
		encParam, err := provider.FetchEncParam(bootstrapClient, "005930")
		if err != nil {
			log.Fatal().Err(err).Msg("extracting encparam failed")
		}

		limiter := rate.NewLimiter(rate.Limit(5), 1)
		queue := make(chan *data.Company)
		results := make(chan *screener.Candidate)

		workers := viper.GetInt("workers")
		if workers < 1 {
			workers = 10
		}

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				client := provider.NewClient(15 * time.Second)
				for company := range queue {
					if err := limiter.Wait(ctx); err != nil {
						return
					}

					values, ok, err := provider.SalesProjections(client, company.Code, encParam)
					if err != nil {
						log.Warn().Err(err).Str("CompanyCode", company.Code).
							Msg("fetching sales projections failed")
						continue
					}

					if candidate := screener.Screen(company.Code, company.Name, values, ok); candidate != nil {
						log.Info().Str("CompanyName", company.Name).
							Float64("G1", candidate.GrowthY1).
							Float64("G2", candidate.GrowthY2).
							Float64("G3", candidate.GrowthY3).
							Msg("found accelerating growth")
						results <- candidate
					}
				}
			}()
		}

		go func() {
			for _, company := range companies {
				queue <- company
			}
			close(queue)
			wg.Wait()
			close(results)
		}()

		var candidates []*screener.Candidate
		for candidate := range results {
			candidates = append(candidates, candidate)
		}

		if len(candidates) == 0 {
			log.Info().Msg("no companies with accelerating projected growth")
			return
		}

		outFile, err := os.Create(screenOutput)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", screenOutput).Msg("could not create output file")
		}
		defer outFile.Close()

		if err := gocsv.MarshalFile(&candidates, outFile); err != nil {
			log.Fatal().Err(err).Msg("writing screener results failed")
		}

		log.Info().Int("NumCandidates", len(candidates)).Str("FileName", screenOutput).
			Msg("screener results saved")
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenOutput, "out", "fast_growth.csv", "output CSV file")
}
