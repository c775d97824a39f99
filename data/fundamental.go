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
package data

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// FinancialRecord is one normalized row per (company, period) assembled
// from a scraped financial statement. Every schema field is always
// present: absolute monetary figures default to zero when an indicator
// could not be extracted, while the nullable ratio fields distinguish
// absent (nil, stored as SQL NULL) from a true zero.
//
// Records are immutable once assembled; the upsert keyed on
// (company_code, year, quarter_code) overwrites all non-key fields.
type FinancialRecord struct {
	// Identity
	CompanyCode string   `db:"company_code"`
	CompanyName string   `db:"company_name"`
	Exchange    Exchange `db:"exchange"`
	Year        int      `db:"year"`
	QuarterCode int      `db:"quarter_code"`

	// Absolute figures in units of 100 million won.
	Sales             int64 `db:"sales"`
	OperatingProfit   int64 `db:"operating_profit"`
	NetIncome         int64 `db:"net_income"`
	Assets            int64 `db:"assets"`
	Liabilities       int64 `db:"liabilities"`
	Equity            int64 `db:"equity"`
	Capital           int64 `db:"capital"`
	OperatingCashFlow int64 `db:"operating_cash_flow"`
	InvestingCashFlow int64 `db:"investing_cash_flow"`
	FinancingCashFlow int64 `db:"financing_cash_flow"`
	Capex             int64 `db:"capex"`
	FreeCashFlow      int64 `db:"free_cash_flow"`

	// Ratios computed with a fall-back-to-zero denominator policy.
	OperatingMargin float64 `db:"operating_margin"`
	NetMargin       float64 `db:"net_margin"`
	ROE             float64 `db:"roe"`
	ROA             float64 `db:"roa"`
	DebtRatio       float64 `db:"debt_ratio"`
	ReserveRatio    float64 `db:"reserve_ratio"`
	PayoutRatio     float64 `db:"payout_ratio"`

	// Per-share and price-derived figures. Nil means the figure could not
	// be derived for this period.
	EPS *float64 `db:"eps"`
	BPS *float64 `db:"bps"`
	PER *float64 `db:"per"`
	PBR *float64 `db:"pbr"`

	// Requires a dividend data source this pipeline does not have; always
	// stored as NULL, never conflated with a zero yield.
	DividendYield *float64 `db:"dividend_yield"`
}

// SaveDB upserts the record keyed by (company_code, year, quarter_code).
func (record *FinancialRecord) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing financial record transaction to database")
		}
	}()

	sql := `INSERT INTO financial_statements (
		"company_code",
		"company_name",
		"exchange",
		"year",
		"quarter_code",
		"sales",
		"operating_profit",
		"net_income",
		"assets",
		"liabilities",
		"equity",
		"capital",
		"operating_cash_flow",
		"investing_cash_flow",
		"financing_cash_flow",
		"capex",
		"free_cash_flow",
		"operating_margin",
		"net_margin",
		"roe",
		"roa",
		"debt_ratio",
		"reserve_ratio",
		"payout_ratio",
		"eps",
		"bps",
		"per",
		"pbr",
		"dividend_yield"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29
	) ON CONFLICT (company_code, year, quarter_code)
	DO UPDATE SET
		company_name = EXCLUDED.company_name,
		exchange = EXCLUDED.exchange,
		sales = EXCLUDED.sales,
		operating_profit = EXCLUDED.operating_profit,
		net_income = EXCLUDED.net_income,
		assets = EXCLUDED.assets,
		liabilities = EXCLUDED.liabilities,
		equity = EXCLUDED.equity,
		capital = EXCLUDED.capital,
		operating_cash_flow = EXCLUDED.operating_cash_flow,
		investing_cash_flow = EXCLUDED.investing_cash_flow,
		financing_cash_flow = EXCLUDED.financing_cash_flow,
		capex = EXCLUDED.capex,
		free_cash_flow = EXCLUDED.free_cash_flow,
		operating_margin = EXCLUDED.operating_margin,
		net_margin = EXCLUDED.net_margin,
		roe = EXCLUDED.roe,
		roa = EXCLUDED.roa,
		debt_ratio = EXCLUDED.debt_ratio,
		reserve_ratio = EXCLUDED.reserve_ratio,
		payout_ratio = EXCLUDED.payout_ratio,
		eps = EXCLUDED.eps,
		bps = EXCLUDED.bps,
		per = EXCLUDED.per,
		pbr = EXCLUDED.pbr,
		dividend_yield = EXCLUDED.dividend_yield,
		updated_at = CURRENT_TIMESTAMP;`

	_, err = tx.Exec(ctx, sql,
		record.CompanyCode, record.CompanyName, record.Exchange, record.Year, record.QuarterCode,
		record.Sales, record.OperatingProfit, record.NetIncome, record.Assets, record.Liabilities,
		record.Equity, record.Capital, record.OperatingCashFlow, record.InvestingCashFlow,
		record.FinancingCashFlow, record.Capex, record.FreeCashFlow,
		record.OperatingMargin, record.NetMargin, record.ROE, record.ROA, record.DebtRatio,
		record.ReserveRatio, record.PayoutRatio,
		record.EPS, record.BPS, record.PER, record.PBR, record.DividendYield)
	if err != nil {
		log.Error().Err(err).Str("CompanyCode", record.CompanyCode).Int("Year", record.Year).
			Int("QuarterCode", record.QuarterCode).Msg("error saving financial record to database")
	}

	return nil
}
