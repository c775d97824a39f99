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
	"github.com/stretchr/testify/require"
)

func TestCapexAndFreeCashFlow(t *testing.T) {
	raw := RawValues{
		OperatingCashFlow:   1000,
		PPEPurchases:        -300,
		IntangiblePurchases: -50,
	}

	assert.Equal(t, 350.0, raw.Capex())
	assert.Equal(t, 650.0, raw.FreeCashFlow())
}

func TestDeriveMargins(t *testing.T) {
	raw := RawValues{
		Sales:           2000,
		OperatingProfit: 300,
		NetIncome:       200,
		Assets:          4000,
		Liabilities:     1500,
		Equity:          2500,
		Capital:         500,
	}

	ratios := Derive(raw, 0)
	assert.InDelta(t, 15.0, ratios.OperatingMargin, 1e-9)
	assert.InDelta(t, 10.0, ratios.NetMargin, 1e-9)
	assert.InDelta(t, 8.0, ratios.ROE, 1e-9)
	assert.InDelta(t, 5.0, ratios.ROA, 1e-9)
	assert.InDelta(t, 60.0, ratios.DebtRatio, 1e-9)
	assert.InDelta(t, 400.0, ratios.ReserveRatio, 1e-9)
}

func TestDeriveZeroDenominators(t *testing.T) {
	ratios := Derive(RawValues{NetIncome: 100}, 0)
	assert.Zero(t, ratios.OperatingMargin)
	assert.Zero(t, ratios.NetMargin)
	assert.Zero(t, ratios.ROE)
	assert.Zero(t, ratios.ROA)
	assert.Zero(t, ratios.DebtRatio)
	assert.Zero(t, ratios.ReserveRatio)
}

func TestDerivePayoutRatio(t *testing.T) {
	t.Run("computed against profit", func(t *testing.T) {
		ratios := Derive(RawValues{NetIncome: 400, DividendsPaid: -100}, 0)
		assert.InDelta(t, 25.0, ratios.PayoutRatio, 1e-9)
	})

	t.Run("never computed against a loss", func(t *testing.T) {
		ratios := Derive(RawValues{NetIncome: -400, DividendsPaid: -100}, 0)
		assert.Zero(t, ratios.PayoutRatio)
	})
}

func TestDeriveEPSGuard(t *testing.T) {
	t.Run("implausible magnitude resets to absent", func(t *testing.T) {
		ratios := Derive(RawValues{NetIncome: 100, EPS: 50_000_000}, 70000)
		assert.Nil(t, ratios.EPS)
		assert.Nil(t, ratios.BPS)
		assert.Nil(t, ratios.PER)
		assert.Nil(t, ratios.PBR)
	})

	t.Run("plausible value flows through", func(t *testing.T) {
		ratios := Derive(RawValues{NetIncome: 100, Equity: 1000, EPS: 5000}, 70000)
		require.NotNil(t, ratios.EPS)
		assert.Equal(t, 5000.0, *ratios.EPS)
	})
}

func TestDeriveImpliedBPS(t *testing.T) {
	// 1,000,000 net income at EPS 1000 implies 1000 shares; equity
	// 50,000,000 over 1000 shares is a BPS of 50,000.
	raw := RawValues{NetIncome: 1_000_000, Equity: 50_000_000, EPS: 1000}

	ratios := Derive(raw, 0)
	require.NotNil(t, ratios.BPS)
	assert.InDelta(t, 50_000.0, *ratios.BPS, 1e-9)
	assert.Nil(t, ratios.PER, "no close price means no PER")
	assert.Nil(t, ratios.PBR, "no close price means no PBR")
}

func TestDerivePriceMultiples(t *testing.T) {
	raw := RawValues{NetIncome: 1_000_000, Equity: 50_000_000, EPS: 1000}

	t.Run("positive close price", func(t *testing.T) {
		ratios := Derive(raw, 25000)
		require.NotNil(t, ratios.PER)
		assert.InDelta(t, 25.0, *ratios.PER, 1e-9)
		require.NotNil(t, ratios.PBR)
		assert.InDelta(t, 0.5, *ratios.PBR, 1e-9)
	})

	t.Run("negative EPS never yields a PER", func(t *testing.T) {
		ratios := Derive(RawValues{NetIncome: -1_000_000, Equity: 50_000_000, EPS: -1000}, 25000)
		assert.Nil(t, ratios.PER)
	})
}

func TestScaleMonetary(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int64
	}{
		{"exact multiple", 3e8, 3},
		{"truncates toward zero", 1.9e8, 1},
		{"negative truncates toward zero", -1.9e8, -1},
		{"below one unit", 5e7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaleMonetary(tt.value))
		})
	}
}
