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
	"strconv"
	"strings"
)

// Field binds a canonical indicator name to the identifiers used to locate
// it inside a statement table: an exact concept id and a label substring
// used as fallback when the source carries no concept ids. The mapping is
// configured as data in labels.go so provider code never embeds raw label
// strings.
type Field struct {
	Canonical    string
	ConceptID    string
	LabelPattern string
}

// ParseNumber coerces a scraped cell to a float. Thousands separators and
// surrounding whitespace are stripped. Missing markers ("-", "N/A", empty)
// and unparseable text yield (0, false); absent is distinct from a true
// zero, which yields (0, true).
func ParseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ",", "")

	switch text {
	case "", "-", "N/A", "n/a":
		return 0, false
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}

// Value resolves an (indicator, column) cell to a number. An exact
// concept-id match always wins; only when the table carries no matching
// concept id does the case-insensitive label substring fallback run, in
// original row order with the first match taken. A missing row, a missing
// cell, or an unparseable literal resolves to absent, never an error.
func (t *Table) Value(field Field, col int) (float64, bool) {
	if col < 0 {
		return 0, false
	}

	if field.ConceptID != "" {
		for _, row := range t.Rows {
			if row.ConceptID == field.ConceptID {
				return parseCell(row.Cells, col)
			}
		}
	}

	if field.LabelPattern != "" {
		pattern := strings.ToLower(field.LabelPattern)
		for _, row := range t.Rows {
			if strings.Contains(strings.ToLower(row.Label), pattern) {
				return parseCell(row.Cells, col)
			}
		}
	}

	return 0, false
}

func parseCell(cells []string, col int) (float64, bool) {
	if col >= len(cells) {
		return 0, false
	}
	return ParseNumber(cells[col])
}

// ProfitLossValue extracts a P&L indicator, preferring the income
// statement and falling through to the comprehensive income statement when
// the income statement yields exactly zero. Some companies report an item
// only under comprehensive income and the upstream pipeline has always
// used zero as the not-found signal there; the fallback therefore fires on
// a true zero as well, which is kept for compatibility (this is
// fallback-on-zero, not fallback-on-absent).
func ProfitLossValue(income, comprehensive *Table, field Field, incomeCol, comprehensiveCol int) float64 {
	var value float64
	if income != nil {
		value, _ = income.Value(field, incomeCol)
	}

	if value == 0 && comprehensive != nil {
		value, _ = comprehensive.Value(field, comprehensiveCol)
	}

	return value
}
