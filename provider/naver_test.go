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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koreaquant/krdata/statement"
)

func TestParsePeriodColumn(t *testing.T) {
	tests := []struct {
		name   string
		header string
		period statement.PeriodKey
		ok     bool
	}{
		{"fiscal year end", "2023.12", statement.PeriodKey{Year: 2023, Quarter: 4}, true},
		{"estimate marker stripped", "2024.12(E)", statement.PeriodKey{Year: 2024, Quarter: 4}, true},
		{"annotation stripped", "2024.03 (IFRS연결)", statement.PeriodKey{Year: 2024, Quarter: 1}, true},
		{"mid-year quarter", "2023.06", statement.PeriodKey{Year: 2023, Quarter: 2}, true},
		{"no month", "2023", statement.PeriodKey{}, false},
		{"month out of range", "2023.13", statement.PeriodKey{}, false},
		{"prose header", "주요재무정보", statement.PeriodKey{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, ok := parsePeriodColumn(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.period, period)
		})
	}
}
