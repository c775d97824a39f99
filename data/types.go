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
package data

import (
	"time"

	"github.com/google/uuid"
)

// Exchange identifies the listing market of a company.
type Exchange string

const (
	KOSPI           Exchange = "KOSPI"
	KOSDAQ          Exchange = "KOSDAQ"
	UnknownExchange Exchange = "Unknown"
)

// Market codes used by the Naver investor trading pages.
const (
	MarketCodeKOSPI  = "01"
	MarketCodeKOSDAQ = "02"
)

type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunPartial RunStatus = "partial"
)

// RunSummary describes the outcome of a single dataset fetch.
type RunSummary struct {
	RunID           uuid.UUID
	TaskName        string
	Status          RunStatus
	StartTime       time.Time
	EndTime         time.Time
	NumObservations int
}

// Observation is the envelope streamed from a provider fetch to the run
// command. Exactly one of the record pointers is set.
type Observation struct {
	Company         *Company
	Financial       *FinancialRecord
	Indicator       *IndicatorRecord
	Candle          *Candle
	InvestorTrading *InvestorTrading
	MarketLiquidity *MarketLiquidity

	ObservationDate time.Time
	RunID           uuid.UUID
	TaskName        string
}
