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
package wrds

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvesg/config"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Conn issues queries against the research database and scans the result
// set into dst, which must be a pointer to a slice of structs
type Conn interface {
	Select(ctx context.Context, dst interface{}, query string, args ...interface{}) error
}

// Client connects to the WRDS PostgreSQL service. The connection pool is
// created on the first query so commands that only read cached artifacts
// never need credentials.
type Client struct {
	settings config.WRDS
	limiter  *rate.Limiter

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func New(settings config.WRDS) *Client {
	limit := rate.Inf
	if settings.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(settings.RequestsPerMinute))
	}

	return &Client{
		settings: settings,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// DSN returns the connection string for the configured account. When no
// password is configured pgx falls back to ~/.pgpass.
func (client *Client) DSN() string {
	user := url.User(client.settings.Username)
	if client.settings.Password != "" {
		user = url.UserPassword(client.settings.Username, client.settings.Password)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     net.JoinHostPort(client.settings.Host, strconv.Itoa(client.settings.Port)),
		Path:     "wrds",
		RawQuery: "sslmode=require",
	}

	return dsn.String()
}

func (client *Client) connect(ctx context.Context) (*pgxpool.Pool, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.pool != nil {
		return client.pool, nil
	}

	pool, err := pgxpool.New(ctx, client.DSN())
	if err != nil {
		return nil, fmt.Errorf("wrds connect: %w", err)
	}

	client.pool = pool
	return pool, nil
}

// Select runs query and scans every row into dst. Errors from the database
// are returned unchanged.
func (client *Client) Select(ctx context.Context, dst interface{}, query string, args ...interface{}) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return err
	}

	pool, err := client.connect(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := pgxscan.Select(ctx, pool, dst, query, args...); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Dur("Elapsed", time.Since(start)).Msg("wrds query finished")
	return nil
}

// Close releases the connection pool if one was opened
func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.pool != nil {
		client.pool.Close()
		client.pool = nil
	}
}
