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

// Canonical indicator names used across the normalization pipeline.
const (
	Sales               = "sales"
	OperatingProfit     = "operating_profit"
	NetIncome           = "net_income"
	TotalAssets         = "assets"
	TotalLiabilities    = "liabilities"
	TotalEquity         = "equity"
	PaidInCapital       = "capital"
	OperatingCashFlow   = "operating_cash_flow"
	InvestingCashFlow   = "investing_cash_flow"
	FinancingCashFlow   = "financing_cash_flow"
	PPEPurchases        = "ppe_purchases"
	IntangiblePurchases = "intangible_purchases"
	DividendsPaid       = "dividends_paid"
	EarningsPerShare    = "eps"
)

// BalanceSheetFields maps canonical balance sheet indicators to their DART
// concept ids and Korean label fallbacks.
var BalanceSheetFields = []Field{
	{Canonical: TotalAssets, ConceptID: "ifrs-full_Assets", LabelPattern: "자산총계"},
	{Canonical: TotalLiabilities, ConceptID: "ifrs-full_Liabilities", LabelPattern: "부채총계"},
	{Canonical: TotalEquity, ConceptID: "ifrs-full_Equity", LabelPattern: "자본총계"},
	{Canonical: PaidInCapital, ConceptID: "ifrs-full_IssuedCapital", LabelPattern: "자본금"},
}

// IncomeStatementFields covers the P&L indicators. These are looked up in
// the income statement first and the comprehensive income statement second
// (see ProfitLossValue).
var IncomeStatementFields = []Field{
	{Canonical: Sales, ConceptID: "ifrs-full_Revenue", LabelPattern: "매출액"},
	{Canonical: OperatingProfit, ConceptID: "dart_OperatingIncomeLoss", LabelPattern: "영업이익"},
	{Canonical: NetIncome, ConceptID: "ifrs-full_ProfitLoss", LabelPattern: "당기순이익"},
	{Canonical: EarningsPerShare, ConceptID: "ifrs-full_BasicEarningsLossPerShare", LabelPattern: "주당순이익"},
}

// CashFlowFields covers the cash flow statement indicators, including the
// capex components used to derive free cash flow.
var CashFlowFields = []Field{
	{Canonical: OperatingCashFlow, ConceptID: "ifrs-full_CashFlowsFromUsedInOperatingActivities", LabelPattern: "영업활동"},
	{Canonical: InvestingCashFlow, ConceptID: "ifrs-full_CashFlowsFromUsedInInvestingActivities", LabelPattern: "투자활동"},
	{Canonical: FinancingCashFlow, ConceptID: "ifrs-full_CashFlowsFromUsedInFinancingActivities", LabelPattern: "재무활동"},
	{Canonical: PPEPurchases, ConceptID: "ifrs-full_PurchaseOfPropertyPlantAndEquipmentClassifiedAsInvestingActivities", LabelPattern: "유형자산의 취득"},
	{Canonical: IntangiblePurchases, ConceptID: "ifrs-full_PurchaseOfIntangibleAssetsClassifiedAsInvestingActivities", LabelPattern: "무형자산의 취득"},
	{Canonical: DividendsPaid, ConceptID: "ifrs-full_DividendsPaidClassifiedAsFinancingActivities", LabelPattern: "배당금의 지급"},
}

// FieldByName returns the Field for a canonical indicator name within a
// field list. The boolean is false when the list does not carry the name.
func FieldByName(fields []Field, canonical string) (Field, bool) {
	for _, field := range fields {
		if field.Canonical == canonical {
			return field, true
		}
	}
	return Field{}, false
}
