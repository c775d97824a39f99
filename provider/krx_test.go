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
	"github.com/stretchr/testify/require"
)

func TestIsinForCode(t *testing.T) {
	tests := []struct {
		code string
		isin string
	}{
		{"005930", "KR7005930003"}, // Samsung Electronics
		{"000660", "KR7000660001"}, // SK hynix
		{"035720", "KR7035720002"}, // Kakao
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			isin, err := isinForCode(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.isin, isin)
		})
	}

	t.Run("wrong length rejected", func(t *testing.T) {
		_, err := isinForCode("59")
		assert.Error(t, err)
	})

	t.Run("non-digit rejected", func(t *testing.T) {
		_, err := isinForCode("00593!")
		assert.Error(t, err)
	})
}
