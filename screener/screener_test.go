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
package screener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthRates(t *testing.T) {
	t.Run("three transitions", func(t *testing.T) {
		rates, ok := GrowthRates(Series{100, 110, 121, 145.2})
		require.True(t, ok)
		assert.InDelta(t, 0.10, rates[0], 1e-9)
		assert.InDelta(t, 0.10, rates[1], 1e-9)
		assert.InDelta(t, 0.20, rates[2], 1e-9)
	})

	t.Run("zero base year discards the series", func(t *testing.T) {
		_, ok := GrowthRates(Series{100, 0, 120, 140})
		assert.False(t, ok)
	})

	t.Run("negative values still produce rates", func(t *testing.T) {
		rates, ok := GrowthRates(Series{100, -50, -25, -10})
		require.True(t, ok)
		assert.InDelta(t, -1.5, rates[0], 1e-9)
	})
}

func TestAccelerating(t *testing.T) {
	tests := []struct {
		name  string
		rates [3]float64
		want  bool
	}{
		{"strictly increasing and positive", [3]float64{0.10, 0.14, 0.16}, true},
		{"flat between two transitions", [3]float64{0.10, 0.10, 0.16}, false},
		{"decelerating", [3]float64{0.20, 0.15, 0.10}, false},
		{"first transition not positive", [3]float64{0, 0.10, 0.20}, false},
		{"recovering from negative", [3]float64{-0.10, 0.05, 0.20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accelerating(tt.rates))
		})
	}
}

func TestScreen(t *testing.T) {
	allPresent := [4]bool{true, true, true, true}

	t.Run("accelerating growth is flagged", func(t *testing.T) {
		candidate := Screen("005930", "삼성전자", Series{100, 110, 125, 145}, allPresent)
		require.NotNil(t, candidate)
		assert.Equal(t, "005930", candidate.CompanyCode)
		assert.Equal(t, "삼성전자", candidate.CompanyName)
		assert.InDelta(t, 10.0, candidate.GrowthY1, 1e-9)
		assert.InDelta(t, 13.64, candidate.GrowthY2, 1e-9)
		assert.InDelta(t, 16.0, candidate.GrowthY3, 1e-9)
	})

	t.Run("steady growth is not flagged", func(t *testing.T) {
		assert.Nil(t, Screen("000660", "SK하이닉스", Series{100, 120, 130, 140}, allPresent))
	})

	t.Run("absent projection discards the company", func(t *testing.T) {
		assert.Nil(t, Screen("000660", "SK하이닉스", Series{100, 110, 125, 0}, [4]bool{true, true, true, false}))
	})

	t.Run("zero base year discards the company", func(t *testing.T) {
		assert.Nil(t, Screen("000660", "SK하이닉스", Series{0, 110, 125, 145}, allPresent))
	})
}
