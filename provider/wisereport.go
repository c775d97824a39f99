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
	"regexp"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
	"github.com/koreaquant/krdata/statement"
)

const (
	wiseReportCompanyURL = "https://navercomp.wisereport.co.kr/v2/company/c1010001.aspx"
	wiseReportAjaxURL    = "https://navercomp.wisereport.co.kr/v2/company/ajax/cF1001.aspx"
)

// Statement report codes on the WiseReport AJAX endpoint.
const (
	rptIncomeStatement     = "0"
	rptBalanceSheet        = "1"
	rptComprehensiveIncome = "2"
	rptCashFlow            = "4"
)

// statementTablePosition is where the statement table sits within an AJAX
// response document; the page renders a summary grid before it.
const statementTablePosition = 1

type WiseReport struct{}

func (wise *WiseReport) Name() string {
	return "WiseReport"
}

func (wise *WiseReport) ConfigDescription() map[string]string {
	return map[string]string{
		"minYear": "Ignore fiscal years before this year (default 2015)",
		"workers": "How many concurrent workers? (default 10, max 50)",
	}
}

func (wise *WiseReport) Description() string {
	return `WiseReport serves the financial statements behind Naver Finance's company analysis pages: balance sheet, income statement, comprehensive income and cash flow, annual and quarterly.`
}

func (wise *WiseReport) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"financial-statements": {
			Name:        "Financial Statements",
			Description: "Normalized annual financial records with derived ratios for every company in stock_info.",
			Tables:      []string{"financial_statements"},
			DateRange: func() (time.Time, time.Time) {
				return time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()
			},
			Fetch: downloadFinancialStatements,
		},
	}
}

var encParamPattern = regexp.MustCompile(`encparam\s*:\s*['"]([^'"]+)['"]`)

// fetchEncParam extracts the session parameter the AJAX endpoint requires
// from a company page. One parameter works for every company, so the run
// fetches it once up front.
func fetchEncParam(client *resty.Client, companyCode string) (string, error) {
	var encParam string

	err := withRetry(func() error {
		resp, err := client.R().
			SetQueryParam("cmp_cd", companyCode).
			Get(wiseReportCompanyURL)
		if err != nil {
			return err
		}

		match := encParamPattern.FindStringSubmatch(string(resp.Body()))
		if match == nil {
			return fmt.Errorf("encparam not found in company page")
		}

		encParam = match[1]
		return nil
	})

	return encParam, err
}

// fetchStatementTable retrieves one statement table for a company. A page
// with no content maps to ErrEmptyResponse and a page with fewer tables
// than expected to ErrTableNotFound; both mean "no records for this
// entity" upstream.
func fetchStatementTable(client *resty.Client, companyCode, encParam, rpt string) (*statement.Table, error) {
	var table *statement.Table

	err := withRetry(func() error {
		resp, err := client.R().
			SetQueryParams(map[string]string{
				"cmp_cd":   companyCode,
				"fin_typ":  "0",
				"freq_typ": "Y",
				"rpt":      rpt,
				"encparam": encParam,
			}).
			SetHeader("Referer", fmt.Sprintf("%s?cmp_cd=%s", wiseReportCompanyURL, companyCode)).
			Get(wiseReportAjaxURL)
		if err != nil {
			return err
		}

		doc, err := parseDocument(resp.Body(), false)
		if err != nil {
			return err
		}

		table, err = statement.ExtractTable(doc, statementTablePosition)
		return err
	})

	if err != nil {
		return nil, err
	}
	return table, nil
}

// SalesProjections returns the last four annual sales values from the
// consensus view of a company's statement table, oldest first. The ok
// flags mark which values were present; the screener discards any company
// with a missing projection.
func SalesProjections(client *resty.Client, companyCode, encParam string) ([4]float64, [4]bool, error) {
	var values [4]float64
	var ok [4]bool

	var table *statement.Table
	err := withRetry(func() error {
		resp, err := client.R().
			SetQueryParams(map[string]string{
				"cmp_cd":   companyCode,
				"fin_typ":  "4",
				"freq_typ": "Y",
				"encparam": encParam,
			}).
			SetHeader("Referer", fmt.Sprintf("%s?cmp_cd=%s", wiseReportCompanyURL, companyCode)).
			Get(wiseReportAjaxURL)
		if err != nil {
			return err
		}

		doc, err := parseDocument(resp.Body(), false)
		if err != nil {
			return err
		}

		table, err = statement.ExtractTable(doc, statementTablePosition)
		return err
	})
	if err != nil {
		return values, ok, err
	}

	salesField, _ := statement.FieldByName(statement.IncomeStatementFields, statement.Sales)

	// the last four columns are the trailing year plus three projections
	numCols := len(table.Columns)
	if numCols < 4 {
		return values, ok, fmt.Errorf("expected at least 4 period columns, got %d", numCols)
	}

	for i := 0; i < 4; i++ {
		values[i], ok[i] = table.Value(salesField, numCols-4+i)
	}

	return values, ok, nil
}

// FetchEncParam bootstraps the WiseReport session parameter for callers
// outside the dataset flow (the screen command).
func FetchEncParam(client *resty.Client, companyCode string) (string, error) {
	return fetchEncParam(client, companyCode)
}

func downloadFinancialStatements(ctx context.Context, task *library.Task, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	minYear := task.ConfigInt("minYear", 2015)

	// one encparam serves the whole run; Samsung Electronics is used as
	// the bootstrap page
	bootstrapClient := NewClient(15 * time.Second)
	encParam, err := fetchEncParam(bootstrapClient, "005930")
	if err != nil {
		logger.Error().Err(err).Msg("extracting encparam failed")
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

				records, err := normalizeCompany(ctx, task, client, company, encParam, minYear)
				if err != nil {
					logger.Error().Err(err).Str("CompanyCode", company.Code).
						Str("CompanyName", company.Name).Msg("scraping financial statements failed")
					mu.Lock()
					runSummary.Status = data.RunPartial
					mu.Unlock()
					continue
				}

				if len(records) == 0 {
					logger.Warn().Str("CompanyCode", company.Code).Str("CompanyName", company.Name).
						Msg("no usable periods; skipping company")
					continue
				}

				for _, record := range records {
					out <- &data.Observation{
						Financial:       record,
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

// normalizeCompany runs the full pipeline for one company: fetch the four
// statement tables, look up year-end close prices for PER/PBR, and
// normalize into one record per usable period.
func normalizeCompany(ctx context.Context, task *library.Task, client *resty.Client, company *data.Company, encParam string, minYear int) ([]*data.FinancialRecord, error) {
	stmts := statement.Statements{}

	balance, err := fetchStatementTable(client, company.Code, encParam, rptBalanceSheet)
	if err != nil {
		return nil, err
	}
	stmts.BalanceSheet = balance

	cashflow, err := fetchStatementTable(client, company.Code, encParam, rptCashFlow)
	if err != nil {
		return nil, err
	}
	stmts.CashFlow = cashflow

	// a company may report P&L under either statement; a missing table
	// here degrades instead of failing
	if income, err := fetchStatementTable(client, company.Code, encParam, rptIncomeStatement); err == nil {
		stmts.IncomeStatement = income
	}
	if comprehensive, err := fetchStatementTable(client, company.Code, encParam, rptComprehensiveIncome); err == nil {
		stmts.ComprehensiveIncome = comprehensive
	}

	closeByYear, err := task.Library.YearEndCloses(ctx, company.Code)
	if err != nil {
		return nil, err
	}

	entity := statement.Entity{
		Code:     company.Code,
		Name:     company.Name,
		Exchange: company.Exchange,
	}

	return statement.Normalize(entity, stmts, closeByYear, minYear), nil
}
