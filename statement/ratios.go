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

import "math"

// MonetaryScale converts raw currency amounts to units of 100 million won
// before storage.
const MonetaryScale = 1e8

// MaxPlausibleEPS is the sanity threshold for earnings per share. An
// extracted magnitude at or above this is treated as a unit or extraction
// error and reset to absent before any EPS-derived ratio is computed.
const MaxPlausibleEPS = 1e7

// RawValues holds the indicator values extracted for one period. Absent
// indicators carry zero; the ratio rules below never divide by them.
type RawValues struct {
	Sales               float64
	OperatingProfit     float64
	NetIncome           float64
	Assets              float64
	Liabilities         float64
	Equity              float64
	Capital             float64
	OperatingCashFlow   float64
	InvestingCashFlow   float64
	FinancingCashFlow   float64
	PPEPurchases        float64
	IntangiblePurchases float64
	DividendsPaid       float64
	EPS                 float64
}

// Capex is the sum of the magnitudes of the capex components. Purchases
// appear as outflows (negative) on the cash flow statement.
func (raw RawValues) Capex() float64 {
	return math.Abs(raw.PPEPurchases) + math.Abs(raw.IntangiblePurchases)
}

// FreeCashFlow is operating cash flow less capex.
func (raw RawValues) FreeCashFlow() float64 {
	return raw.OperatingCashFlow - raw.Capex()
}

// Ratios holds the metrics derived for one period. The always-computed
// ratios fall back to zero on a zero denominator. The EPS-derived and
// price-derived metrics are nil when they cannot be computed; absent is
// distinct from zero for them.
type Ratios struct {
	OperatingMargin float64
	NetMargin       float64
	ROE             float64
	ROA             float64
	DebtRatio       float64
	ReserveRatio    float64
	PayoutRatio     float64

	EPS *float64
	BPS *float64
	PER *float64
	PBR *float64
}

// Derive computes the ratio set for one period from extracted raw values
// and the last close price of the period's calendar year. A closePrice of
// zero means no price was available; PER and PBR stay absent then.
func Derive(raw RawValues, closePrice float64) Ratios {
	ratios := Ratios{
		OperatingMargin: percentage(raw.OperatingProfit, raw.Sales),
		NetMargin:       percentage(raw.NetIncome, raw.Sales),
		ROE:             percentage(raw.NetIncome, raw.Equity),
		ROA:             percentage(raw.NetIncome, raw.Assets),
		DebtRatio:       percentage(raw.Liabilities, raw.Equity),
		ReserveRatio:    percentage(raw.Equity-raw.Capital, raw.Capital),
	}

	// Payout is never computed against a loss.
	if raw.NetIncome > 0 {
		ratios.PayoutRatio = math.Abs(raw.DividendsPaid) / raw.NetIncome * 100
	}

	eps := raw.EPS
	if math.Abs(eps) >= MaxPlausibleEPS {
		eps = 0
	}

	if eps != 0 {
		ratios.EPS = ptr(eps)
	}

	// No share-count source exists in this pipeline; the count is implied
	// from net income and EPS when both are nonzero.
	if eps != 0 && raw.NetIncome != 0 {
		shares := raw.NetIncome / eps
		if shares != 0 {
			ratios.BPS = ptr(raw.Equity / shares)
		}
	}

	if closePrice > 0 {
		if eps > 0 {
			ratios.PER = ptr(closePrice / eps)
		}
		if ratios.BPS != nil && *ratios.BPS > 0 {
			ratios.PBR = ptr(closePrice / *ratios.BPS)
		}
	}

	return ratios
}

// ScaleMonetary converts a raw currency amount to stored units, truncating
// toward zero.
func ScaleMonetary(value float64) int64 {
	return int64(value / MonetaryScale)
}

func percentage(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator * 100
}

func ptr(v float64) *float64 {
	return &v
}
