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
	"context"
	"time"

	"github.com/koreaquant/krdata/data"
	"github.com/koreaquant/krdata/library"
)

type Provider interface {
	Name() string
	ConfigDescription() map[string]string
	Description() string
	Datasets() map[string]Dataset
}

type Dataset struct {
	Name        string
	Description string
	Tables      []string
	DateRange   func() (time.Time, time.Time)

	// Fetch is called when krdata wants to retrieve records for the
	// dataset. It receives the task configuration, a channel to write
	// observations to, and a channel to report the run summary on exit.
	Fetch func(context.Context, *library.Task, chan<- *data.Observation, chan<- data.RunSummary)
}

// Map holds every registered provider keyed by provider name.
var Map = map[string]Provider{
	"krx":         &KRX{},
	"naver":       &Naver{},
	"navermarket": &NaverMarket{},
	"wisereport":  &WiseReport{},
}
