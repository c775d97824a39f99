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

// Package statement normalizes scraped Korean financial statement tables
// into flat per-period records. All functions in this package are pure
// transforms over already-fetched documents; network access and database
// writes belong to the provider and data packages.
package statement

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// AnnualQuarter is the sentinel quarter code used for full-year records.
// Quarterly records use codes 1-4.
const AnnualQuarter = 0

// PeriodKey identifies a fiscal year or fiscal quarter.
type PeriodKey struct {
	Year    int
	Quarter int
}

// QuarterOf maps a calendar month to its quarter code (1-4).
func QuarterOf(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// NewAnnualPeriod returns a PeriodKey for a full fiscal year.
func NewAnnualPeriod(year int) PeriodKey {
	return PeriodKey{Year: year, Quarter: AnnualQuarter}
}

// NewQuarterPeriod returns a PeriodKey for the quarter containing month.
func NewQuarterPeriod(year int, month time.Month) PeriodKey {
	return PeriodKey{Year: year, Quarter: QuarterOf(month)}
}

func (p PeriodKey) Annual() bool {
	return p.Quarter == AnnualQuarter
}

func (p PeriodKey) String() string {
	if p.Annual() {
		return fmt.Sprintf("%dY", p.Year)
	}
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

var yearToken = regexp.MustCompile(`20\d{2}`)

// PeriodYear extracts the 4-digit year from a period token such as
// "2023.12", "2023/12(IFRS연결)" or "2023". The boolean is false when the
// token carries no recognizable year.
func PeriodYear(token string) (int, bool) {
	match := yearToken.FindString(token)
	if match == "" {
		return 0, false
	}

	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}

	return year, true
}

// UsablePeriods returns the period tokens for which a normalized record can
// be built. A period is usable only when a balance position and a cash
// movement are both reported and at least one profit-and-loss
// representation exists; some companies report a P&L item only under
// comprehensive income, so either statement satisfies that side. Tokens
// whose year is below minYear are dropped. The result is sorted descending
// so the most recent period comes first.
//
// When several columns reference the same period token the lowest column
// index wins; the maps passed in are expected to already reflect that.
func UsablePeriods(balance, income, comprehensive, cashflow map[string]int, minYear int) []string {
	if len(balance) == 0 || len(cashflow) == 0 {
		return nil
	}

	usable := make([]string, 0, len(balance))
	for token := range balance {
		if _, ok := cashflow[token]; !ok {
			continue
		}

		_, hasIncome := income[token]
		_, hasComprehensive := comprehensive[token]
		if !hasIncome && !hasComprehensive {
			continue
		}

		year, ok := PeriodYear(token)
		if !ok || year < minYear {
			continue
		}

		usable = append(usable, token)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(usable)))
	return usable
}
