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
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koreaquant/krdata/data"
)

// Tables maintained by krdata, in migration order.
var Tables = []string{
	"stock_info",
	"financial_statements",
	"quarterly_indicators",
	"stock_day_candles",
	"investor_trading",
	"market_liquidity",
}

type Library struct {
	DBUrl string

	Pool *pgxpool.Pool
}

// NewFromDB connects to the database and returns a library handle.
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	myLibrary := &Library{DBUrl: dbURL}
	if err := myLibrary.Connect(ctx); err != nil {
		return nil, err
	}
	return myLibrary, nil
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}

// Companies returns every company in stock_info ordered by market cap.
func (myLibrary *Library) Companies(ctx context.Context) ([]*data.Company, error) {
	var companies []*data.Company
	err := pgxscan.Select(ctx, myLibrary.Pool, &companies,
		`SELECT company_code, company_name, exchange, market_cap FROM stock_info ORDER BY market_cap DESC`)
	if err != nil {
		return nil, err
	}
	return companies, nil
}

// YearEndCloses returns the last close of every calendar year on record
// for a company, keyed by year.
func (myLibrary *Library) YearEndCloses(ctx context.Context, companyCode string) (map[int]float64, error) {
	rows := []struct {
		Year  int     `db:"year"`
		Close float64 `db:"close"`
	}{}

	err := pgxscan.Select(ctx, myLibrary.Pool, &rows,
		`SELECT DISTINCT ON (date_part('year', candle_date))
			date_part('year', candle_date)::int AS year, close
		FROM stock_day_candles WHERE company_code=$1
		ORDER BY date_part('year', candle_date), candle_date DESC`, companyCode)
	if err != nil {
		return nil, err
	}

	closes := make(map[int]float64, len(rows))
	for _, row := range rows {
		closes[row.Year] = row.Close
	}

	return closes, nil
}

// TotalRecords returns the total number of rows across all library tables
func (myLibrary *Library) TotalRecords(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	total := 0
	for _, tbl := range Tables {
		count := 0
		if err := conn.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", tbl)).Scan(&count); err != nil {
			return 0, err
		}
		total += count
	}

	return total, nil
}

// TableRecords returns the number of rows in one library table
func (myLibrary *Library) TableRecords(ctx context.Context, tbl string) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", tbl)).Scan(&count)
	return count, err
}

// LastUpdated returns the date that the library was last written to
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastUpdated time.Time
	err = conn.QueryRow(ctx, `SELECT coalesce(max(updated_at), '0001-01-01'::timestamp) FROM stock_info`).Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}
