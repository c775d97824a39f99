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
	"sort"
	"strings"

	"github.com/hako/durafmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
	"github.com/koreaquant/krdata/provider"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [provider/dataset...]",
	Short: "Run data import datasets",
	Long: `The run sub-command executes datasets and saves the records they produce. Datasets
are addressed as provider/dataset (e.g. krx/listed-companies). With no arguments every
registered dataset runs in dependency order: listings first, then prices, then
statements that need prices for valuation ratios.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("dbUrl"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		keys := args
		if len(keys) == 0 {
			keys = allDatasetKeys()
		}

		config := map[string]string{
			"limit":        viper.GetString("limit"),
			"lookbackDays": viper.GetString("lookbackDays"),
			"maxPages":     viper.GetString("maxPages"),
			"minYear":      viper.GetString("minYear"),
			"workers":      viper.GetString("workers"),
		}

		for _, key := range keys {
			providerKey, datasetKey, ok := strings.Cut(key, "/")
			if !ok {
				log.Fatal().Str("DatasetKey", key).Msg("dataset must be addressed as provider/dataset")
			}

			subProvider, ok := provider.Map[providerKey]
			if !ok {
				log.Fatal().Str("ProviderKey", providerKey).Msg("provider not found")
			}

			subDataset, ok := subProvider.Datasets()[datasetKey]
			if !ok {
				log.Fatal().Str("ProviderKey", providerKey).Str("DatasetKey", datasetKey).
					Msg("dataset not found")
			}

			task := library.NewTask(providerKey, datasetKey, config, myLibrary)
			executeTask(ctx, task, subDataset)
		}
	},
}

// executeTask runs one dataset fetch and upserts every observation it
// streams. Writes are serialized on one acquired connection; the fetch's
// worker pool stays free to keep scraping while saves proceed.
func executeTask(ctx context.Context, task *library.Task, dataset provider.Dataset) {
	fetchLogger := log.With().Str("Task", task.Name).Str("RunID", task.ID.String()[:8]).Logger()
	fetchCtx := fetchLogger.WithContext(ctx)

	outChan := make(chan *data.Observation, 100)
	summaryChan := make(chan data.RunSummary, 1)

	go func() {
		defer close(outChan)
		dataset.Fetch(fetchCtx, task, outChan, summaryChan)
	}()

	conn, err := task.Library.Pool.Acquire(ctx)
	if err != nil {
		fetchLogger.Fatal().Err(err).Msg("could not acquire database connection")
	}
	defer conn.Release()

	numSaved := 0
	for obs := range outChan {
		if err := saveObservation(ctx, conn, obs); err != nil {
			fetchLogger.Error().Err(err).Msg("saving observation failed")
			continue
		}
		numSaved++
	}

	runSummary := <-summaryChan
	runTime := runSummary.EndTime.Sub(runSummary.StartTime)

	fetchLogger.Info().Str("Status", string(runSummary.Status)).
		Str("RunTime", durafmt.Parse(runTime).String()).
		Int("NumberReturned", runSummary.NumObservations).
		Int("NumberSaved", numSaved).
		Msg("dataset run finished")
}

func saveObservation(ctx context.Context, conn *pgxpool.Conn, obs *data.Observation) error {
	switch {
	case obs.Company != nil:
		return obs.Company.SaveDB(ctx, conn)
	case obs.Financial != nil:
		return obs.Financial.SaveDB(ctx, conn)
	case obs.Indicator != nil:
		return obs.Indicator.SaveDB(ctx, conn)
	case obs.Candle != nil:
		return obs.Candle.SaveDB(ctx, conn)
	case obs.InvestorTrading != nil:
		return obs.InvestorTrading.SaveDB(ctx, conn)
	case obs.MarketLiquidity != nil:
		return obs.MarketLiquidity.SaveDB(ctx, conn)
	}
	return nil
}

// allDatasetKeys lists every registered dataset, ordered so that listings
// and candles land before the statement pipeline that reads them.
func allDatasetKeys() []string {
	var keys []string
	for providerKey, subProvider := range provider.Map {
		for datasetKey := range subProvider.Datasets() {
			keys = append(keys, providerKey+"/"+datasetKey)
		}
	}

	order := map[string]int{
		"krx/listed-companies":            0,
		"krx/day-candles":                 1,
		"navermarket/investor-trading":    2,
		"navermarket/market-liquidity":    3,
		"naver/quarterly-indicators":      4,
		"wisereport/financial-statements": 5,
	}

	sort.Slice(keys, func(i, j int) bool {
		return order[keys[i]] < order[keys[j]]
	})

	return keys
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("workers", 10, "number of concurrent fetch workers")
	runCmd.Flags().Int("limit", 200, "companies per market, ranked by market cap")
	runCmd.Flags().Int("minYear", 2015, "ignore fiscal years before this year")
	for _, flag := range []string{"workers", "limit", "minYear"} {
		if err := viper.BindPFlag(flag, runCmd.Flags().Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("Flag", flag).Msg("BindPFlag failed")
		}
	}
}
