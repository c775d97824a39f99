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
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// InvestorTrading holds the daily net trading values of the three investor
// classes for one market (01 = KOSPI, 02 = KOSDAQ).
type InvestorTrading struct {
	TradeDate     time.Time `db:"trade_date"`
	Market        string    `db:"market"`
	Individual    int64     `db:"individual_trading_value"`
	Foreign       int64     `db:"foreign_trading_value"`
	Institutional int64     `db:"institutional_trading_value"`
}

// SaveDB upserts the row keyed by (trade_date, market).
func (trading *InvestorTrading) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing investor trading transaction to database")
		}
	}()

	sql := `INSERT INTO investor_trading (
		"trade_date",
		"market",
		"individual_trading_value",
		"foreign_trading_value",
		"institutional_trading_value"
	) VALUES (
		$1, $2, $3, $4, $5
	) ON CONFLICT (trade_date, market)
	DO UPDATE SET
		individual_trading_value = EXCLUDED.individual_trading_value,
		foreign_trading_value = EXCLUDED.foreign_trading_value,
		institutional_trading_value = EXCLUDED.institutional_trading_value;`

	_, err = tx.Exec(ctx, sql, trading.TradeDate, trading.Market,
		trading.Individual, trading.Foreign, trading.Institutional)
	if err != nil {
		log.Error().Err(err).Str("Market", trading.Market).Msg("error saving investor trading to database")
	}

	return nil
}
