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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Company is one listed entity identified by its exchange code.
type Company struct {
	Code      string   `db:"company_code" csv:"company_code"`
	Name      string   `db:"company_name" csv:"company_name"`
	Exchange  Exchange `db:"exchange" csv:"exchange"`
	MarketCap int64    `db:"market_cap" csv:"market_cap"`
}

// SaveDB upserts the company keyed by its exchange code. Names and market
// caps change over time and are overwritten on conflict.
func (company *Company) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing company transaction to database")
		}
	}()

	sql := `INSERT INTO stock_info (
		"company_code",
		"company_name",
		"exchange",
		"market_cap"
	) VALUES (
		$1,
		$2,
		$3,
		$4
	) ON CONFLICT (company_code)
	DO UPDATE SET
		company_name = EXCLUDED.company_name,
		exchange = EXCLUDED.exchange,
		market_cap = EXCLUDED.market_cap,
		updated_at = CURRENT_TIMESTAMP;`

	_, err = tx.Exec(ctx, sql, company.Code, company.Name, company.Exchange, company.MarketCap)
	if err != nil {
		log.Error().Err(err).Str("CompanyCode", company.Code).Msg("error saving company to database")
	}

	return nil
}
