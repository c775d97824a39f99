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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient(15 * time.Second)

	assert.Contains(t, client.Header.Get("User-Agent"), "Mozilla")
	assert.Equal(t, 15*time.Second, client.GetClient().Timeout)
}

func TestParseWon(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value int64
		ok    bool
	}{
		{"comma grouped", "1,234,567", 1234567, true},
		{"negative", "-12,345", -12345, true},
		{"zero", "0", 0, true},
		{"whitespace trimmed", " 42 ", 42, true},
		{"dash means absent", "-", 0, false},
		{"empty means absent", "", 0, false},
		{"prose is absent", "해당없음", 0, false},
		{"decimal point rejected", "1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := parseWon(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestDecodeEUCKR(t *testing.T) {
	// "한국" in EUC-KR
	body := []byte{0xc7, 0xd1, 0xb1, 0xb9}

	decoded, err := decodeEUCKR(body)
	require.NoError(t, err)
	assert.Equal(t, "한국", decoded)
}

func TestParseDocument(t *testing.T) {
	t.Run("utf-8 body", func(t *testing.T) {
		doc, err := parseDocument([]byte("<html><body><p>매출액</p></body></html>"), false)
		require.NoError(t, err)
		assert.Equal(t, "매출액", doc.Find("p").Text())
	})

	t.Run("euc-kr body", func(t *testing.T) {
		body := append([]byte("<html><body><p>"), 0xc7, 0xd1, 0xb1, 0xb9)
		body = append(body, []byte("</p></body></html>")...)

		doc, err := parseDocument(body, true)
		require.NoError(t, err)
		assert.Equal(t, "한국", doc.Find("p").Text())
	})
}

func TestWithRetry(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := withRetry(func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("second attempt succeeds", func(t *testing.T) {
		calls := 0
		err := withRetry(func() error {
			calls++
			if calls == 1 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausted attempts return the last error", func(t *testing.T) {
		calls := 0
		sentinel := errors.New("still broken")
		err := withRetry(func() error {
			calls++
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, fetchAttempts, calls)
	})
}
