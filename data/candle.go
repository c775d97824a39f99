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

// Candle is one daily OHLCV bar for a company, plus the foreign net buy
// amount in units of 100 million won.
type Candle struct {
	CompanyCode   string    `db:"company_code"`
	CompanyName   string    `db:"company_name"`
	Date          time.Time `db:"candle_date"`
	Open          int64     `db:"open"`
	High          int64     `db:"high"`
	Low           int64     `db:"low"`
	Close         int64     `db:"close"`
	Volume        int64     `db:"volume"`
	ForeignNetBuy int64     `db:"foreign_net_buy_amount"`
}

// SaveDB upserts the candle keyed by (company_code, candle_date).
func (candle *Candle) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing candle transaction to database")
		}
	}()

	sql := `INSERT INTO stock_day_candles (
		"company_code",
		"company_name",
		"candle_date",
		"open",
		"high",
		"low",
		"close",
		"volume",
		"foreign_net_buy_amount"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	) ON CONFLICT (company_code, candle_date)
	DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		foreign_net_buy_amount = EXCLUDED.foreign_net_buy_amount,
		updated_at = CURRENT_TIMESTAMP;`

	_, err = tx.Exec(ctx, sql, candle.CompanyCode, candle.CompanyName, candle.Date,
		candle.Open, candle.High, candle.Low, candle.Close, candle.Volume, candle.ForeignNetBuy)
	if err != nil {
		log.Error().Err(err).Str("CompanyCode", candle.CompanyCode).Msg("error saving candle to database")
	}

	return nil
}
