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
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
	"github.com/koreaquant/krdata/statement"
)

const naverMainURL = "https://finance.naver.com/item/main.naver"

// indicatorTablePosition is where the per-period indicator table sits on a
// company's Naver Finance main page.
const indicatorTablePosition = 3

type Naver struct{}

func (naver *Naver) Name() string {
	return "Naver Finance"
}

func (naver *Naver) ConfigDescription() map[string]string {
	return map[string]string{
		"workers": "How many concurrent workers? (default 10, max 50)",
	}
}

func (naver *Naver) Description() string {
	return `Naver Finance publishes a per-company indicator table (PER, PBR, ROE, margins, growth rates) by fiscal period on each company's main page.`
}

func (naver *Naver) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"quarterly-indicators": {
			Name:        "Quarterly Indicators",
			Description: "Per-period valuation and profitability indicators for every company in stock_info.",
			Tables:      []string{"quarterly_indicators"},
			DateRange: func() (time.Time, time.Time) {
				return time.Now().AddDate(-3, 0, 0), time.Now()
			},
			Fetch: downloadNaverIndicators,
		},
	}
}

// naverIndicatorFields maps the Korean row labels of the indicator table
// to record fields. The mapping is data so the scrape loop stays free of
// label literals.
var naverIndicatorFields = []struct {
	field  statement.Field
	assign func(*data.IndicatorRecord, *float64)
}{
	{statement.Field{Canonical: "per", LabelPattern: "PER(배)"}, func(r *data.IndicatorRecord, v *float64) { r.PER = v }},
	{statement.Field{Canonical: "pbr", LabelPattern: "PBR(배)"}, func(r *data.IndicatorRecord, v *float64) { r.PBR = v }},
	{statement.Field{Canonical: "ev_ebitda", LabelPattern: "EV/EBITDA"}, func(r *data.IndicatorRecord, v *float64) { r.EVEBITDA = v }},
	{statement.Field{Canonical: "sales_growth_yoy", LabelPattern: "매출액증가율"}, func(r *data.IndicatorRecord, v *float64) { r.SalesGrowthYoY = v }},
	{statement.Field{Canonical: "eps_growth_yoy", LabelPattern: "EPS증가율"}, func(r *data.IndicatorRecord, v *float64) { r.EPSGrowthYoY = v }},
	{statement.Field{Canonical: "dividend_yield", LabelPattern: "배당수익률"}, func(r *data.IndicatorRecord, v *float64) { r.DividendYield = v }},
	{statement.Field{Canonical: "roe", LabelPattern: "ROE(%)"}, func(r *data.IndicatorRecord, v *float64) { r.ROE = v }},
	{statement.Field{Canonical: "roa", LabelPattern: "ROA(%)"}, func(r *data.IndicatorRecord, v *float64) { r.ROA = v }},
	{statement.Field{Canonical: "roic", LabelPattern: "ROIC"}, func(r *data.IndicatorRecord, v *float64) { r.ROIC = v }},
	{statement.Field{Canonical: "gross_profit_margin", LabelPattern: "매출총이익률"}, func(r *data.IndicatorRecord, v *float64) { r.GrossProfitMargin = v }},
	{statement.Field{Canonical: "operating_profit_margin", LabelPattern: "영업이익률"}, func(r *data.IndicatorRecord, v *float64) { r.OperatingProfitMargin = v }},
	{statement.Field{Canonical: "net_profit_margin", LabelPattern: "순이익률"}, func(r *data.IndicatorRecord, v *float64) { r.NetProfitMargin = v }},
	{statement.Field{Canonical: "debt_ratio", LabelPattern: "부채비율"}, func(r *data.IndicatorRecord, v *float64) { r.DebtRatio = v }},
	{statement.Field{Canonical: "current_ratio", LabelPattern: "유동비율"}, func(r *data.IndicatorRecord, v *float64) { r.CurrentRatio = v }},
	{statement.Field{Canonical: "interest_coverage_ratio", LabelPattern: "이자보상배율"}, func(r *data.IndicatorRecord, v *float64) { r.InterestCoverageRatio = v }},
}

func downloadNaverIndicators(ctx context.Context, task *library.Task, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	limiter := rate.NewLimiter(rate.Limit(5), 1)
	queue := make(chan *data.Company)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < task.Workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client := NewClient(15 * time.Second)
			for company := range queue {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				records, err := scrapeNaverIndicators(client, company)
				if err != nil {
					logger.Error().Err(err).Str("CompanyCode", company.Code).
						Str("CompanyName", company.Name).Msg("scraping indicator table failed")
					mu.Lock()
					runSummary.Status = data.RunPartial
					mu.Unlock()
					continue
				}

				for _, record := range records {
					out <- &data.Observation{
						Indicator:       record,
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

// scrapeNaverIndicators extracts one IndicatorRecord per period column of
// the company main page's indicator table. Columns that do not parse as a
// period are skipped; indicator cells that do not parse stay absent.
func scrapeNaverIndicators(client *resty.Client, company *data.Company) ([]*data.IndicatorRecord, error) {
	var table *statement.Table

	err := withRetry(func() error {
		resp, err := client.R().
			SetQueryParam("code", company.Code).
			Get(naverMainURL)
		if err != nil {
			return err
		}

		doc, err := parseDocument(resp.Body(), true)
		if err != nil {
			return err
		}

		table, err = statement.ExtractTable(doc, indicatorTablePosition)
		return err
	})
	if err != nil {
		return nil, err
	}

	var records []*data.IndicatorRecord
	for col, header := range table.Columns {
		period, ok := parsePeriodColumn(header)
		if !ok {
			continue
		}

		record := &data.IndicatorRecord{
			CompanyCode: company.Code,
			CompanyName: company.Name,
			Year:        period.Year,
			QuarterCode: period.Quarter,
		}

		for _, mapping := range naverIndicatorFields {
			if value, ok := table.Value(mapping.field, col); ok {
				v := value
				mapping.assign(record, &v)
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// parsePeriodColumn parses headers like "2023.12", "2024.12(E)" or
// "2024.03 (IFRS연결)" into a quarterly period key.
func parsePeriodColumn(header string) (statement.PeriodKey, bool) {
	header = strings.TrimSpace(header)
	if idx := strings.Index(header, "("); idx >= 0 {
		header = strings.TrimSpace(header[:idx])
	}

	parts := strings.Split(header, ".")
	if len(parts) < 2 {
		return statement.PeriodKey{}, false
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return statement.PeriodKey{}, false
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return statement.PeriodKey{}, false
	}

	return statement.NewQuarterPeriod(year, time.Month(month)), true
}
