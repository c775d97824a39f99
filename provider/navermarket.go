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
package provider

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
)

const (
	naverInvestorURL = "https://finance.naver.com/sise/investorDealTrendDay.naver"
	naverDepositURL  = "https://finance.naver.com/sise/sise_deposit.naver"
)

type NaverMarket struct{}

func (market *NaverMarket) Name() string {
	return "Naver Market Trends"
}

func (market *NaverMarket) ConfigDescription() map[string]string {
	return map[string]string{
		"maxPages": "How many pages of history to walk per market? (default 150)",
	}
}

func (market *NaverMarket) Description() string {
	return `Naver Finance's market trend pages aggregate daily net trading values by investor class and market-wide liquidity figures (customer deposits and credit balances).`
}

func (market *NaverMarket) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"investor-trading": {
			Name:        "Investor Trading",
			Description: "Daily net trading values of individuals, foreigners and institutions for KOSPI and KOSDAQ.",
			Tables:      []string{"investor_trading"},
			DateRange: func() (time.Time, time.Time) {
				return time.Now().AddDate(-1, 0, 0), time.Now()
			},
			Fetch: downloadInvestorTrading,
		},

		"market-liquidity": {
			Name:        "Market Liquidity",
			Description: "Daily customer deposits and credit balances.",
			Tables:      []string{"market_liquidity"},
			DateRange: func() (time.Time, time.Time) {
				return time.Now().AddDate(-1, 0, 0), time.Now()
			},
			Fetch: downloadMarketLiquidity,
		},
	}
}

func downloadInvestorTrading(ctx context.Context, task *library.Task, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
	logger := zerolog.Ctx(ctx)

	runSummary := data.RunSummary{
		RunID:     task.ID,
		TaskName:  task.Name,
		StartTime: time.Now(),
		Status:    data.RunSuccess,
	}

	numObs := 0

	defer func() {
		runSummary.EndTime = time.Now()
		runSummary.NumObservations = numObs
		exitNotification <- runSummary
	}()

	maxPages := task.ConfigInt("maxPages", 150)
	client := NewClient(15 * time.Second)
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	bizDate := time.Now().Format("20060102")

	for _, marketCode := range []string{data.MarketCodeKOSPI, data.MarketCodeKOSDAQ} {
		for page := 1; page <= maxPages; page++ {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			rows, err := scrapeInvestorTradingPage(client, bizDate, marketCode, page)
			if err != nil {
				logger.Error().Err(err).Str("Market", marketCode).Int("Page", page).
					Msg("scraping investor trading page failed")
				runSummary.Status = data.RunPartial
				break
			}

			// an empty page signals the end of the available history
			if len(rows) == 0 {
				break
			}

			for _, row := range rows {
				out <- &data.Observation{
					InvestorTrading: row,
					ObservationDate: time.Now(),
					RunID:           task.ID,
					TaskName:        task.Name,
				}
				numObs++
			}
		}
	}
}

// scrapeInvestorTradingPage fetches one page of the investor deal trend
// table for a market.
func scrapeInvestorTradingPage(client *resty.Client, bizDate, marketCode string, page int) ([]*data.InvestorTrading, error) {
	var rows []*data.InvestorTrading

	err := withRetry(func() error {
		resp, err := client.R().
			SetQueryParams(map[string]string{
				"bizdate": bizDate,
				"sosok":   marketCode,
				"page":    strconv.Itoa(page),
			}).
			Get(naverInvestorURL)
		if err != nil {
			return err
		}

		doc, err := parseDocument(resp.Body(), true)
		if err != nil {
			return err
		}

		rows = parseInvestorTradingRows(doc, marketCode)
		return nil
	})

	return rows, err
}

// parseInvestorTradingRows extracts the data rows of an investor deal
// trend page. Header and separator rows carry no td.date2 cell and are
// skipped; a row with an unparseable date or value is dropped.
func parseInvestorTradingRows(doc *goquery.Document, marketCode string) []*data.InvestorTrading {
	var rows []*data.InvestorTrading

	doc.Find("table.type_1 tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("td.date2").Length() == 0 {
			return
		}

		cells := tr.Find("td")
		if cells.Length() < 4 {
			return
		}

		tradeDate, err := time.Parse("06.01.02", strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}

		individual, ok1 := parseWon(cells.Eq(1).Text())
		foreign, ok2 := parseWon(cells.Eq(2).Text())
		institutional, ok3 := parseWon(cells.Eq(3).Text())
		if !ok1 || !ok2 || !ok3 {
			return
		}

		rows = append(rows, &data.InvestorTrading{
			TradeDate:     tradeDate,
			Market:        marketCode,
			Individual:    individual,
			Foreign:       foreign,
			Institutional: institutional,
		})
	})

	return rows
}

func downloadMarketLiquidity(ctx context.Context, task *library.Task, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
	logger := zerolog.Ctx(ctx)

	runSummary := data.RunSummary{
		RunID:     task.ID,
		TaskName:  task.Name,
		StartTime: time.Now(),
		Status:    data.RunSuccess,
	}

	numObs := 0

	defer func() {
		runSummary.EndTime = time.Now()
		runSummary.NumObservations = numObs
		exitNotification <- runSummary
	}()

	maxPages := task.ConfigInt("maxPages", 150)
	client := NewClient(15 * time.Second)
	limiter := rate.NewLimiter(rate.Limit(1), 1)

	for page := 1; page <= maxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		rows, err := scrapeLiquidityPage(client, page)
		if err != nil {
			logger.Error().Err(err).Int("Page", page).Msg("scraping market liquidity page failed")
			runSummary.Status = data.RunPartial
			break
		}

		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			out <- &data.Observation{
				MarketLiquidity: row,
				ObservationDate: time.Now(),
				RunID:           task.ID,
				TaskName:        task.Name,
			}
			numObs++
		}
	}
}

// scrapeLiquidityPage fetches one page of the deposit trend table.
func scrapeLiquidityPage(client *resty.Client, page int) ([]*data.MarketLiquidity, error) {
	var rows []*data.MarketLiquidity

	err := withRetry(func() error {
		resp, err := client.R().
			SetQueryParam("page", strconv.Itoa(page)).
			Get(naverDepositURL)
		if err != nil {
			return err
		}

		doc, err := parseDocument(resp.Body(), true)
		if err != nil {
			return err
		}

		rows = parseLiquidityRows(doc)
		return nil
	})

	return rows, err
}

// parseLiquidityRows extracts the data rows of a deposit trend page:
// date, customer deposits, credit balance.
func parseLiquidityRows(doc *goquery.Document) []*data.MarketLiquidity {
	var rows []*data.MarketLiquidity

	doc.Find("table.type_1 tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("td.date").Length() == 0 {
			return
		}

		cells := tr.Find("td")
		if cells.Length() < 3 {
			return
		}

		tradeDate, err := time.Parse("06.01.02", strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}

		deposits, ok1 := parseWon(cells.Eq(1).Text())
		credit, ok2 := parseWon(cells.Eq(2).Text())
		if !ok1 || !ok2 {
			return
		}

		rows = append(rows, &data.MarketLiquidity{
			TradeDate:        tradeDate,
			CustomerDeposits: deposits,
			CreditBalance:    credit,
		})
	})

	return rows
}
