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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
)

const krxDataURL = "http://data.krx.co.kr/comm/bldAttendant/getJSONData.cmd"

type KRX struct{}

func (krx *KRX) Name() string {
	return "KRX"
}

func (krx *KRX) ConfigDescription() map[string]string {
	return map[string]string{
		"limit":        "How many companies per market, ranked by market cap? (default 200)",
		"lookbackDays": "How many days of candles to fetch? (default 365)",
		"workers":      "How many concurrent workers? (default 10, max 50)",
	}
}

func (krx *KRX) Description() string {
	return `The Korea Exchange (KRX) publishes listings, market caps, daily prices and investor trading values for KOSPI and KOSDAQ securities.`
}

func (krx *KRX) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"listed-companies": {
			Name:        "Listed Companies",
			Description: "Top companies by market capitalization for KOSPI and KOSDAQ.",
			Tables:      []string{"stock_info"},
			DateRange: func() (time.Time, time.Time) {
				return time.Now().AddDate(0, 0, -7), time.Now()
			},
			Fetch: downloadKrxCompanies,
		},

		"day-candles": {
			Name:        "Daily Candles",
			Description: "Daily OHLCV bars and foreign net-buy values for every company in stock_info.",
			Tables:      []string{"stock_day_candles"},
			DateRange: func() (time.Time, time.Time) {
				return time.Now().AddDate(-3, 0, 0), time.Now()
			},
			Fetch: downloadKrxCandles,
		},
	}
}

type krxMarketCapRow struct {
	Code      string `json:"ISU_SRT_CD"`
	Name      string `json:"ISU_ABBRV"`
	Close     string `json:"TDD_CLSPRC"`
	MarketCap string `json:"MKTCAP"`
}

type krxCandleRow struct {
	Date   string `json:"TRD_DD"`
	Open   string `json:"TDD_OPNPRC"`
	High   string `json:"TDD_HGPRC"`
	Low    string `json:"TDD_LWPRC"`
	Close  string `json:"TDD_CLSPRC"`
	Volume string `json:"ACC_TRDVOL"`
}

type krxTradingValueRow struct {
	Date         string `json:"TRD_DD"`
	Institutions string `json:"TRDVAL1"`
	Corporations string `json:"TRDVAL2"`
	Individuals  string `json:"TRDVAL3"`
	Foreigners   string `json:"TRDVAL4"`
}

// krxFetch posts a bld query to the KRX data endpoint and decodes the
// OutBlock_1 rows into out.
func krxFetch(client *resty.Client, params map[string]string, out any) error {
	return withRetry(func() error {
		resp, err := client.R().
			SetHeader("Referer", "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader/index.cmd").
			SetFormData(params).
			Post(krxDataURL)
		if err != nil {
			return err
		}

		if resp.StatusCode() >= 300 {
			return fmt.Errorf("krx returned status %d", resp.StatusCode())
		}

		envelope := struct {
			OutBlock json.RawMessage `json:"OutBlock_1"`
			Output   json.RawMessage `json:"output"`
		}{}
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			return err
		}

		block := envelope.OutBlock
		if len(block) == 0 {
			block = envelope.Output
		}
		if len(block) == 0 {
			return fmt.Errorf("krx response has no data block")
		}

		return json.Unmarshal(block, out)
	})
}

func downloadKrxCompanies(ctx context.Context, task *library.Task, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	limit := task.ConfigInt("limit", 200)
	client := NewClient(30 * time.Second)

	markets := []struct {
		id       string
		exchange data.Exchange
	}{
		{id: "STK", exchange: data.KOSPI},
		{id: "KSQ", exchange: data.KOSDAQ},
	}

	var companies []*data.Company
	for _, market := range markets {
		rows, err := krxMarketCap(client, market.id)
		if err != nil {
			logger.Error().Err(err).Str("Market", string(market.exchange)).Msg("fetching KRX market cap list failed")
			runSummary.Status = data.RunPartial
			continue
		}

		sort.Slice(rows, func(i, j int) bool {
			capI, _ := parseWon(rows[i].MarketCap)
			capJ, _ := parseWon(rows[j].MarketCap)
			return capI > capJ
		})

		if len(rows) > limit {
			rows = rows[:limit]
		}

		for _, row := range rows {
			marketCap, ok := parseWon(row.MarketCap)
			if !ok {
				continue
			}

			companies = append(companies, &data.Company{
				Code:      row.Code,
				Name:      row.Name,
				Exchange:  market.exchange,
				MarketCap: marketCap,
			})
		}
	}

	if len(companies) == 0 {
		runSummary.Status = data.RunFailed
		return
	}

	for _, company := range companies {
		out <- &data.Observation{
			Company:         company,
			ObservationDate: time.Now(),
			RunID:           task.ID,
			TaskName:        task.Name,
		}
		numObs++
	}
}

// krxMarketCap fetches the market cap ranking for one market, walking back
// up to a week to find the most recent trading day with data.
func krxMarketCap(client *resty.Client, marketID string) ([]krxMarketCapRow, error) {
	var lastErr error
	for back := 0; back < 7; back++ {
		tradeDate := time.Now().AddDate(0, 0, -back).Format("20060102")

		var rows []krxMarketCapRow
		err := krxFetch(client, map[string]string{
			"bld":   "dbms/MDC/STAT/standard/MDCSTAT01501",
			"mktId": marketID,
			"trdDd": tradeDate,
		}, &rows)
		if err != nil {
			lastErr = err
			continue
		}

		if len(rows) > 0 {
			return rows, nil
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no trading day with data in the last week")
	}
	return nil, lastErr
}

func downloadKrxCandles(ctx context.Context, task *library.Task, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	companies, err := task.Library.Companies(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("loading companies from stock_info failed")
		runSummary.Status = data.RunFailed
		return
	}

	if len(companies) == 0 {
		logger.Warn().Msg("stock_info is empty; run krx/listed-companies first")
		runSummary.Status = data.RunFailed
		return
	}

	lookback := task.ConfigInt("lookbackDays", 365)
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -lookback)

	limiter := rate.NewLimiter(rate.Limit(5), 1)
	queue := make(chan *data.Company)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < task.Workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client := NewClient(30 * time.Second)
			for company := range queue {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				candles, err := krxCompanyCandles(client, company, startDate, endDate)
				if err != nil {
					// one company's failure never aborts the batch
					logger.Error().Err(err).Str("CompanyCode", company.Code).Msg("fetching candles failed")
					mu.Lock()
					runSummary.Status = data.RunPartial
					mu.Unlock()
					continue
				}

				for _, candle := range candles {
					out <- &data.Observation{
						Candle:          candle,
						ObservationDate: time.Now(),
						RunID:           task.ID,
						TaskName:        task.Name,
					}
					mu.Lock()
					numObs++
					mu.Unlock()
				}
			}
		}()
	}

	for _, company := range companies {
		select {
		case queue <- company:
		case <-ctx.Done():
		}
	}
	close(queue)
	wg.Wait()
}

// krxCompanyCandles fetches OHLCV bars and foreign net-buy trading values
// for one company and merges them by date.
func krxCompanyCandles(client *resty.Client, company *data.Company, startDate, endDate time.Time) ([]*data.Candle, error) {
	isin, err := isinForCode(company.Code)
	if err != nil {
		return nil, err
	}

	var priceRows []krxCandleRow
	if err := krxFetch(client, map[string]string{
		"bld":    "dbms/MDC/STAT/standard/MDCSTAT01701",
		"isuCd":  isin,
		"strtDd": startDate.Format("20060102"),
		"endDd":  endDate.Format("20060102"),
	}, &priceRows); err != nil {
		return nil, err
	}

	var valueRows []krxTradingValueRow
	if err := krxFetch(client, map[string]string{
		"bld":       "dbms/MDC/STAT/standard/MDCSTAT02303",
		"isuCd":     isin,
		"strtDd":    startDate.Format("20060102"),
		"endDd":     endDate.Format("20060102"),
		"inqTpCd":   "2",
		"trdVolVal": "2",
		"askBid":    "3",
	}, &valueRows); err != nil {
		return nil, err
	}

	foreignByDate := make(map[string]int64, len(valueRows))
	for _, row := range valueRows {
		if value, ok := parseWon(row.Foreigners); ok {
			foreignByDate[row.Date] = value / 100_000_000
		}
	}

	candles := make([]*data.Candle, 0, len(priceRows))
	for _, row := range priceRows {
		date, err := time.Parse("2006/01/02", row.Date)
		if err != nil {
			continue
		}

		open, _ := parseWon(row.Open)
		high, _ := parseWon(row.High)
		low, _ := parseWon(row.Low)
		closePrice, ok := parseWon(row.Close)
		if !ok {
			continue
		}
		volume, _ := parseWon(row.Volume)

		candles = append(candles, &data.Candle{
			CompanyCode:   company.Code,
			CompanyName:   company.Name,
			Date:          date,
			Open:          open,
			High:          high,
			Low:           low,
			Close:         closePrice,
			Volume:        volume,
			ForeignNetBuy: foreignByDate[row.Date],
		})
	}

	return candles, nil
}

// isinForCode derives the full KRX security identifier from a 6-digit
// short code: "KR7" + code + "00" + ISIN check digit.
func isinForCode(code string) (string, error) {
	if len(code) != 6 {
		return "", fmt.Errorf("invalid company code %q", code)
	}

	base := "KR7" + code + "00"

	// standard ISIN Luhn check over the digit-expanded identifier
	var digits []int
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r >= 'A' && r <= 'Z':
			value := int(r-'A') + 10
			digits = append(digits, value/10, value%10)
		default:
			return "", fmt.Errorf("invalid character %q in code", r)
		}
	}

	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	check := (10 - sum%10) % 10
	return fmt.Sprintf("%s%d", base, check), nil
}
