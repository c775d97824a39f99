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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value float64
		ok    bool
	}{
		{"comma grouped", "1,234", 1234, true},
		{"negative comma grouped", "-12,345.6", -12345.6, true},
		{"plain zero", "0", 0, true},
		{"whitespace trimmed", " 42 ", 42, true},
		{"dash means absent", "-", 0, false},
		{"empty means absent", "", 0, false},
		{"not available marker", "N/A", 0, false},
		{"lowercase marker", "n/a", 0, false},
		{"prose is absent", "적자전환", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParseNumber(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestTableValue(t *testing.T) {
	table := &Table{
		Columns: []string{"2022.12", "2023.12"},
		Rows: []Row{
			{ConceptID: "ifrs-full_Revenue", Label: "수익(매출액)", Cells: []string{"100", "120"}},
			{Label: "매출액 중 기타", Cells: []string{"5", "6"}},
			{Label: "매출액", Cells: []string{"999", "888"}},
		},
	}

	salesField := Field{Canonical: Sales, ConceptID: "ifrs-full_Revenue", LabelPattern: "매출액"}

	t.Run("concept id match wins over label match", func(t *testing.T) {
		value, ok := table.Value(salesField, 1)
		assert.True(t, ok)
		assert.Equal(t, 120.0, value)
	})

	t.Run("label fallback takes the first substring match in row order", func(t *testing.T) {
		// "수익(매출액)" contains the pattern and sits first
		value, ok := table.Value(Field{LabelPattern: "매출액"}, 0)
		assert.True(t, ok)
		assert.Equal(t, 100.0, value)
	})

	t.Run("label fallback skips earlier rows without the pattern", func(t *testing.T) {
		value, ok := table.Value(Field{LabelPattern: "기타"}, 0)
		assert.True(t, ok)
		assert.Equal(t, 5.0, value)
	})

	t.Run("label matching is a case-insensitive substring", func(t *testing.T) {
		upper := &Table{Rows: []Row{{Label: "Basic EPS (KRW)", Cells: []string{"1,500"}}}}
		value, ok := upper.Value(Field{LabelPattern: "basic eps"}, 0)
		assert.True(t, ok)
		assert.Equal(t, 1500.0, value)
	})

	t.Run("missing column is absent", func(t *testing.T) {
		_, ok := table.Value(salesField, 5)
		assert.False(t, ok)
	})

	t.Run("negative column is absent", func(t *testing.T) {
		_, ok := table.Value(salesField, -1)
		assert.False(t, ok)
	})

	t.Run("unmatched field is absent", func(t *testing.T) {
		_, ok := table.Value(Field{ConceptID: "ifrs-full_Equity", LabelPattern: "자본총계"}, 0)
		assert.False(t, ok)
	})
}

func TestProfitLossValue(t *testing.T) {
	field := Field{Canonical: NetIncome, LabelPattern: "당기순이익"}

	income := &Table{Rows: []Row{{Label: "당기순이익", Cells: []string{"500", "0"}}}}
	comprehensive := &Table{Rows: []Row{{Label: "당기순이익", Cells: []string{"450", "700"}}}}

	t.Run("income statement value preferred", func(t *testing.T) {
		assert.Equal(t, 500.0, ProfitLossValue(income, comprehensive, field, 0, 0))
	})

	t.Run("exact zero falls through to comprehensive income", func(t *testing.T) {
		assert.Equal(t, 700.0, ProfitLossValue(income, comprehensive, field, 1, 1))
	})

	t.Run("nil income statement reads comprehensive income", func(t *testing.T) {
		assert.Equal(t, 450.0, ProfitLossValue(nil, comprehensive, field, 0, 0))
	})

	t.Run("both missing resolves to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ProfitLossValue(nil, nil, field, 0, 0))
	})
}
