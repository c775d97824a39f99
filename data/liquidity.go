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

// MarketLiquidity holds the daily market funding figures from the Naver
// deposit trend page: customer deposits and outstanding credit balance.
type MarketLiquidity struct {
	TradeDate        time.Time `db:"trade_date"`
	CustomerDeposits int64     `db:"customer_deposits"`
	CreditBalance    int64     `db:"credit_balance"`
}

// SaveDB upserts the row keyed by trade_date.
func (liquidity *MarketLiquidity) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing market liquidity transaction to database")
		}
	}()

	sql := `INSERT INTO market_liquidity (
		"trade_date",
		"customer_deposits",
		"credit_balance"
	) VALUES (
		$1, $2, $3
	) ON CONFLICT (trade_date)
	DO UPDATE SET
		customer_deposits = EXCLUDED.customer_deposits,
		credit_balance = EXCLUDED.credit_balance;`

	_, err = tx.Exec(ctx, sql, liquidity.TradeDate, liquidity.CustomerDeposits, liquidity.CreditBalance)
	if err != nil {
		log.Error().Err(err).Time("TradeDate", liquidity.TradeDate).Msg("error saving market liquidity to database")
	}

	return nil
}
