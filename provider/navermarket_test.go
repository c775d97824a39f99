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
package provider

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreaquant/krdata/data"
)

func documentFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseInvestorTradingRows(t *testing.T) {
	const html = `<html><body>
<table class="type_1">
  <tr><th>날짜</th><th>개인</th><th>외국인</th><th>기관계</th></tr>
  <tr><td colspan="4" class="gray"></td></tr>
  <tr>
    <td class="date2">24.06.14</td>
    <td>-1,234</td><td>5,678</td><td>-4,444</td>
  </tr>
  <tr>
    <td class="date2">24.06.13</td>
    <td>100</td><td>-</td><td>200</td>
  </tr>
  <tr>
    <td class="date2">not-a-date</td>
    <td>1</td><td>2</td><td>3</td>
  </tr>
</table>
</body></html>`

	rows := parseInvestorTradingRows(documentFromHTML(t, html), data.MarketCodeKOSPI)
	require.Len(t, rows, 1, "rows with absent values or bad dates are dropped")

	row := rows[0]
	assert.Equal(t, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), row.TradeDate)
	assert.Equal(t, data.MarketCodeKOSPI, row.Market)
	assert.Equal(t, int64(-1234), row.Individual)
	assert.Equal(t, int64(5678), row.Foreign)
	assert.Equal(t, int64(-4444), row.Institutional)
}

func TestParseInvestorTradingRowsEmptyPage(t *testing.T) {
	const html = `<html><body>
<table class="type_1">
  <tr><th>날짜</th><th>개인</th><th>외국인</th><th>기관계</th></tr>
</table>
</body></html>`

	assert.Empty(t, parseInvestorTradingRows(documentFromHTML(t, html), data.MarketCodeKOSDAQ))
}

func TestParseLiquidityRows(t *testing.T) {
	const html = `<html><body>
<table class="type_1">
  <tr><th>날짜</th><th>고객예탁금</th><th>신용잔고</th></tr>
  <tr>
    <td class="date">24.06.14</td>
    <td>542,118</td><td>198,332</td>
  </tr>
  <tr>
    <td class="date">24.06.13</td>
    <td>539,870</td><td>197,911</td>
  </tr>
</table>
</body></html>`

	rows := parseLiquidityRows(documentFromHTML(t, html))
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), rows[0].TradeDate)
	assert.Equal(t, int64(542118), rows[0].CustomerDeposits)
	assert.Equal(t, int64(198332), rows[0].CreditBalance)
	assert.Equal(t, int64(539870), rows[1].CustomerDeposits)
}
