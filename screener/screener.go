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

// Package screener flags companies whose projected sales growth is
// accelerating: year-over-year growth strictly increasing and positive
// across three consecutive transitions.
package screener

// Series is four consecutive annual values, oldest first.
type Series [4]float64

// Candidate is one flagged company with its growth rates in percent,
// ready for CSV export.
type Candidate struct {
	CompanyCode string  `csv:"company_code"`
	CompanyName string  `csv:"company_name"`
	GrowthY1    float64 `csv:"growth_y1_pct"`
	GrowthY2    float64 `csv:"growth_y2_pct"`
	GrowthY3    float64 `csv:"growth_y3_pct"`
}

// GrowthRates computes the three year-over-year growth rates of the
// series. The boolean is false when any rate is undefined (a zero
// base-year value); such a series is discarded, never flagged.
func GrowthRates(values Series) ([3]float64, bool) {
	var rates [3]float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			return rates, false
		}
		rates[i-1] = (values[i] - values[i-1]) / values[i-1]
	}
	return rates, true
}

// Accelerating reports whether growth is strictly increasing and positive:
// g3 > g2 > g1 > 0.
func Accelerating(rates [3]float64) bool {
	return rates[2] > rates[1] && rates[1] > rates[0] && rates[0] > 0
}

// Screen evaluates one company's series. ok must be true for every input
// value; a series with any absent value is discarded. The returned
// candidate is nil when the company is not flagged.
func Screen(code, name string, values Series, ok [4]bool) *Candidate {
	for _, present := range ok {
		if !present {
			return nil
		}
	}

	rates, valid := GrowthRates(values)
	if !valid || !Accelerating(rates) {
		return nil
	}

	return &Candidate{
		CompanyCode: code,
		CompanyName: name,
		GrowthY1:    round2(rates[0] * 100),
		GrowthY2:    round2(rates[1] * 100),
		GrowthY3:    round2(rates[2] * 100),
	}
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
