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
package statement

import (
	"github.com/koreaquant/krdata/data"
)

// Entity identifies the company a statement belongs to.
type Entity struct {
	Code     string
	Name     string
	Exchange data.Exchange
}

// Statements bundles the four source tables one extraction pass works on.
// Any table may be nil; resolution then degrades per the period and value
// rules rather than failing.
type Statements struct {
	BalanceSheet        *Table
	IncomeStatement     *Table
	ComprehensiveIncome *Table
	CashFlow            *Table
}

// Assemble merges extracted raw values and derived ratios into one
// immutable record for (entity, period). Every schema field is set:
// absolute figures are scaled to units of 100 million won (zero when the
// indicator was absent), and nullable figures are copied so the record
// does not alias the Ratios value. Assembling twice from the same inputs
// yields identical records.
func Assemble(entity Entity, period PeriodKey, raw RawValues, ratios Ratios) *data.FinancialRecord {
	return &data.FinancialRecord{
		CompanyCode: entity.Code,
		CompanyName: entity.Name,
		Exchange:    entity.Exchange,
		Year:        period.Year,
		QuarterCode: period.Quarter,

		Sales:             ScaleMonetary(raw.Sales),
		OperatingProfit:   ScaleMonetary(raw.OperatingProfit),
		NetIncome:         ScaleMonetary(raw.NetIncome),
		Assets:            ScaleMonetary(raw.Assets),
		Liabilities:       ScaleMonetary(raw.Liabilities),
		Equity:            ScaleMonetary(raw.Equity),
		Capital:           ScaleMonetary(raw.Capital),
		OperatingCashFlow: ScaleMonetary(raw.OperatingCashFlow),
		InvestingCashFlow: ScaleMonetary(raw.InvestingCashFlow),
		FinancingCashFlow: ScaleMonetary(raw.FinancingCashFlow),
		Capex:             ScaleMonetary(raw.Capex()),
		FreeCashFlow:      ScaleMonetary(raw.FreeCashFlow()),

		OperatingMargin: ratios.OperatingMargin,
		NetMargin:       ratios.NetMargin,
		ROE:             ratios.ROE,
		ROA:             ratios.ROA,
		DebtRatio:       ratios.DebtRatio,
		ReserveRatio:    ratios.ReserveRatio,
		PayoutRatio:     ratios.PayoutRatio,

		EPS: copyFloat(ratios.EPS),
		BPS: copyFloat(ratios.BPS),
		PER: copyFloat(ratios.PER),
		PBR: copyFloat(ratios.PBR),

		// No dividend data source; explicitly absent.
		DividendYield: nil,
	}
}

// ExtractRaw pulls the raw indicator values for one period token out of
// the statement tables. The column maps come from Table.ColumnIndex; a
// table missing the token contributes absent values only.
func ExtractRaw(stmts Statements, token string) RawValues {
	bsCol := columnFor(stmts.BalanceSheet, token)
	isCol := columnFor(stmts.IncomeStatement, token)
	cisCol := columnFor(stmts.ComprehensiveIncome, token)
	cfCol := columnFor(stmts.CashFlow, token)

	raw := RawValues{}

	if stmts.BalanceSheet != nil {
		for _, field := range BalanceSheetFields {
			value, _ := stmts.BalanceSheet.Value(field, bsCol)
			switch field.Canonical {
			case TotalAssets:
				raw.Assets = value
			case TotalLiabilities:
				raw.Liabilities = value
			case TotalEquity:
				raw.Equity = value
			case PaidInCapital:
				raw.Capital = value
			}
		}
	}

	for _, field := range IncomeStatementFields {
		value := ProfitLossValue(stmts.IncomeStatement, stmts.ComprehensiveIncome, field, isCol, cisCol)
		switch field.Canonical {
		case Sales:
			raw.Sales = value
		case OperatingProfit:
			raw.OperatingProfit = value
		case NetIncome:
			raw.NetIncome = value
		case EarningsPerShare:
			raw.EPS = value
		}
	}

	if stmts.CashFlow != nil {
		for _, field := range CashFlowFields {
			value, _ := stmts.CashFlow.Value(field, cfCol)
			switch field.Canonical {
			case OperatingCashFlow:
				raw.OperatingCashFlow = value
			case InvestingCashFlow:
				raw.InvestingCashFlow = value
			case FinancingCashFlow:
				raw.FinancingCashFlow = value
			case PPEPurchases:
				raw.PPEPurchases = value
			case IntangiblePurchases:
				raw.IntangiblePurchases = value
			case DividendsPaid:
				raw.DividendsPaid = value
			}
		}
	}

	return raw
}

// Normalize runs the full pipeline for one entity: resolve usable periods,
// extract raw values per period, derive ratios against the supplied
// year-end close prices (keyed by year, zero or missing means no price)
// and assemble one record per period. An empty result is not an error; the
// caller logs and skips the entity.
func Normalize(entity Entity, stmts Statements, closeByYear map[int]float64, minYear int) []*data.FinancialRecord {
	var balance, income, comprehensive, cashflow map[string]int
	if stmts.BalanceSheet != nil {
		balance = stmts.BalanceSheet.ColumnIndex()
	}
	if stmts.IncomeStatement != nil {
		income = stmts.IncomeStatement.ColumnIndex()
	}
	if stmts.ComprehensiveIncome != nil {
		comprehensive = stmts.ComprehensiveIncome.ColumnIndex()
	}
	if stmts.CashFlow != nil {
		cashflow = stmts.CashFlow.ColumnIndex()
	}

	tokens := UsablePeriods(balance, income, comprehensive, cashflow, minYear)

	records := make([]*data.FinancialRecord, 0, len(tokens))
	for _, token := range tokens {
		year, ok := PeriodYear(token)
		if !ok {
			continue
		}

		raw := ExtractRaw(stmts, token)
		ratios := Derive(raw, closeByYear[year])
		records = append(records, Assemble(entity, NewAnnualPeriod(year), raw, ratios))
	}

	return records
}

func columnFor(table *Table, token string) int {
	if table == nil {
		return -1
	}
	if col, ok := table.ColumnIndex()[token]; ok {
		return col
	}
	return -1
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
