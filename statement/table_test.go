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
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFlattenHeader(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "concept id wins over label and year",
			parts: []string{"2023.12", "ifrs-full_Assets", "2023"},
			want:  "ifrs-full_Assets",
		},
		{
			name:  "period label wins over bare year",
			parts: []string{"연간", "2023", "2023.12"},
			want:  "2023.12",
		},
		{
			name:  "bare year wins over prose",
			parts: []string{"주요재무정보", "2023"},
			want:  "2023",
		},
		{
			name:  "first component as last resort",
			parts: []string{"주요재무정보", "연간"},
			want:  "주요재무정보",
		},
		{
			name:  "blank components skipped",
			parts: []string{"", "  ", "2023.12"},
			want:  "2023.12",
		},
		{
			name:  "all blank",
			parts: []string{"", " "},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenHeader(tt.parts))
		})
	}
}

func TestColumnIndexFirstOccurrenceWins(t *testing.T) {
	table := &Table{Columns: []string{"2023.12", "2022.12", "2023.12"}}
	idx := table.ColumnIndex()
	assert.Equal(t, 0, idx["2023.12"])
	assert.Equal(t, 1, idx["2022.12"])
}

func TestExtractTableErrors(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		doc := parseHTML(t, "<html><body>  </body></html>")
		_, err := ExtractTable(doc, 0)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := ExtractTable(nil, 0)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("position past the last table", func(t *testing.T) {
		doc := parseHTML(t, "<html><body><table></table></body></html>")
		_, err := ExtractTable(doc, 1)
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestExtractTable(t *testing.T) {
	const html = `<html><body>
<table>
  <thead>
    <tr><th>구분</th><th colspan="2">연간</th></tr>
    <tr><th></th><th>2022.12</th><th>2023.12</th></tr>
  </thead>
  <tbody>
    <tr data-nacc="ifrs-full_Assets"><th>자산총계</th><td>1,000</td><td>1,200</td></tr>
    <tr><th>부채총계</th><td>400</td><td>-</td></tr>
  </tbody>
</table>
</body></html>`

	table, err := ExtractTable(parseHTML(t, html), 0)
	require.NoError(t, err)

	want := &Table{
		Columns: []string{"2022.12", "2023.12"},
		Rows: []Row{
			{ConceptID: "ifrs-full_Assets", Label: "자산총계", Cells: []string{"1,000", "1,200"}},
			{Label: "부채총계", Cells: []string{"400", "-"}},
		},
	}

	if diff := cmp.Diff(want, table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTableRowspanHeader(t *testing.T) {
	// the indicator pages open the header with a rowspan'd label cell; the
	// period cells of the second row must not shift into its columns
	const html = `<html><body>
<table>
  <thead>
    <tr><th rowspan="2">주요재무정보</th><th colspan="2">최근 연간 실적</th></tr>
    <tr><th>2022.12</th><th>2023.12</th></tr>
  </thead>
  <tbody>
    <tr><th>매출액</th><td>3,022</td><td>2,589</td></tr>
  </tbody>
</table>
</body></html>`

	table, err := ExtractTable(parseHTML(t, html), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022.12", "2023.12"}, table.Columns)

	require.Len(t, table.Rows, 1)
	idx := table.ColumnIndex()
	value, ok := table.Value(Field{LabelPattern: "매출액"}, idx["2022.12"])
	require.True(t, ok)
	assert.Equal(t, 3022.0, value)
	value, ok = table.Value(Field{LabelPattern: "매출액"}, idx["2023.12"])
	require.True(t, ok)
	assert.Equal(t, 2589.0, value)
}

func TestExtractTableMixedRowspanColspan(t *testing.T) {
	// annual and quarterly groups side by side under a shared rowspan'd
	// label column, the layout of the Naver main-page indicator table
	const html = `<html><body>
<table>
  <thead>
    <tr>
      <th rowspan="2">구분</th>
      <th colspan="2">연간</th>
      <th colspan="2">분기</th>
    </tr>
    <tr><th>2022.12</th><th>2023.12</th><th>2024.03</th><th>2024.06(E)</th></tr>
  </thead>
  <tbody>
    <tr><th>ROE(%)</th><td>9.2</td><td>4.1</td><td>5.0</td><td>6.3</td></tr>
  </tbody>
</table>
</body></html>`

	table, err := ExtractTable(parseHTML(t, html), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022.12", "2023.12", "2024.03", "2024.06(E)"}, table.Columns)

	value, ok := table.Value(Field{LabelPattern: "ROE"}, table.ColumnIndex()["2024.06(E)"])
	require.True(t, ok)
	assert.Equal(t, 6.3, value)
}

func TestExtractTableByPosition(t *testing.T) {
	const html = `<html><body>
<table><thead><tr><th>a</th><th>x</th></tr></thead>
  <tbody><tr><th>first</th><td>1</td></tr></tbody></table>
<table><thead><tr><th>b</th><th>2023.12</th></tr></thead>
  <tbody><tr><th>second</th><td>2</td></tr></tbody></table>
</body></html>`

	table, err := ExtractTable(parseHTML(t, html), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023.12"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "second", table.Rows[0].Label)
}
