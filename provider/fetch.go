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
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"

const (
	fetchAttempts = 2
	fetchBackoff  = 2 * time.Second
)

// NewClient returns an HTTP client configured for the upstream sources:
// a browser User-Agent (the KRX and WiseReport endpoints reject the
// default Go agent) and a request timeout.
func NewClient(timeout time.Duration) *resty.Client {
	return resty.New().SetHeader("User-Agent", userAgent).SetTimeout(timeout)
}

// withRetry runs fn up to fetchAttempts times with a fixed backoff between
// attempts. Retries belong here, not in the normalization core.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(fetchBackoff)
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

// decodeEUCKR converts a EUC-KR response body to UTF-8. Naver Finance
// serves its pages in EUC-KR.
func decodeEUCKR(body []byte) (string, error) {
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// parseDocument builds a goquery document from an HTML body, decoding
// EUC-KR when the body is not already UTF-8.
func parseDocument(body []byte, euckr bool) (*goquery.Document, error) {
	html := string(body)
	if euckr {
		decoded, err := decodeEUCKR(body)
		if err != nil {
			return nil, err
		}
		html = decoded
	}

	return goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
}

// parseWon parses a comma-grouped integer cell such as "1,234,567". Absent
// markers yield ok=false.
func parseWon(text string) (int64, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" || text == "-" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	var value int64
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
		value = value*10 + int64(r-'0')
	}

	if negative {
		value = -value
	}

	return value, true
}
