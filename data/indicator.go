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

// IndicatorRecord is one row of the quarterly indicator table published on
// a company's Naver Finance main page. Every field the page does not carry
// for a quarter stays nil and is stored as SQL NULL.
type IndicatorRecord struct {
	CompanyCode string `db:"company_code"`
	CompanyName string `db:"company_name"`
	Year        int    `db:"year"`
	QuarterCode int    `db:"quarter_code"`

	PER                   *float64 `db:"per"`
	PBR                   *float64 `db:"pbr"`
	EVEBITDA              *float64 `db:"ev_ebitda"`
	SalesGrowthYoY        *float64 `db:"sales_growth_yoy"`
	EPSGrowthYoY          *float64 `db:"eps_growth_yoy"`
	DividendYield         *float64 `db:"dividend_yield"`
	ROE                   *float64 `db:"roe"`
	ROA                   *float64 `db:"roa"`
	ROIC                  *float64 `db:"roic"`
	GrossProfitMargin     *float64 `db:"gross_profit_margin"`
	OperatingProfitMargin *float64 `db:"operating_profit_margin"`
	NetProfitMargin       *float64 `db:"net_profit_margin"`
	DebtRatio             *float64 `db:"debt_ratio"`
	CurrentRatio          *float64 `db:"current_ratio"`
	InterestCoverageRatio *float64 `db:"interest_coverage_ratio"`
}

// SaveDB upserts the record keyed by (company_code, year, quarter_code).
func (record *IndicatorRecord) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing indicator transaction to database")
		}
	}()

	sql := `INSERT INTO quarterly_indicators (
		"company_code",
		"company_name",
		"year",
		"quarter_code",
		"per",
		"pbr",
		"ev_ebitda",
		"sales_growth_yoy",
		"eps_growth_yoy",
		"dividend_yield",
		"roe",
		"roa",
		"roic",
		"gross_profit_margin",
		"operating_profit_margin",
		"net_profit_margin",
		"debt_ratio",
		"current_ratio",
		"interest_coverage_ratio"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19
	) ON CONFLICT (company_code, year, quarter_code)
	DO UPDATE SET
		company_name = EXCLUDED.company_name,
		per = EXCLUDED.per,
		pbr = EXCLUDED.pbr,
		ev_ebitda = EXCLUDED.ev_ebitda,
		sales_growth_yoy = EXCLUDED.sales_growth_yoy,
		eps_growth_yoy = EXCLUDED.eps_growth_yoy,
		dividend_yield = EXCLUDED.dividend_yield,
		roe = EXCLUDED.roe,
		roa = EXCLUDED.roa,
		roic = EXCLUDED.roic,
		gross_profit_margin = EXCLUDED.gross_profit_margin,
		operating_profit_margin = EXCLUDED.operating_profit_margin,
		net_profit_margin = EXCLUDED.net_profit_margin,
		debt_ratio = EXCLUDED.debt_ratio,
		current_ratio = EXCLUDED.current_ratio,
		interest_coverage_ratio = EXCLUDED.interest_coverage_ratio,
		updated_at = CURRENT_TIMESTAMP;`

	_, err = tx.Exec(ctx, sql,
		record.CompanyCode, record.CompanyName, record.Year, record.QuarterCode,
		record.PER, record.PBR, record.EVEBITDA, record.SalesGrowthYoY, record.EPSGrowthYoY,
		record.DividendYield, record.ROE, record.ROA, record.ROIC, record.GrossProfitMargin,
		record.OperatingProfitMargin, record.NetProfitMargin, record.DebtRatio,
		record.CurrentRatio, record.InterestCoverageRatio)
	if err != nil {
		log.Error().Err(err).Str("CompanyCode", record.CompanyCode).Int("Year", record.Year).
			Int("QuarterCode", record.QuarterCode).Msg("error saving indicator record to database")
	}

	return nil
}
