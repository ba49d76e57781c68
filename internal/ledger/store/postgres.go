package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/stockdash/stockdash/internal/core"
)

// Postgres persists trades in a PostgreSQL table. The serial primary key
// preserves insertion order for same-day trades.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and ensures the trades table exists.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}

	// Ledger traffic is append-mostly with low concurrency.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS trades (
		id         SERIAL PRIMARY KEY,
		trade_id   TEXT NOT NULL,
		symbol     TEXT NOT NULL,
		trade_date DATE NOT NULL,
		quantity   DOUBLE PRECISION NOT NULL,
		price      DOUBLE PRECISION NOT NULL,
		side       TEXT NOT NULL,
		fees       DOUBLE PRECISION NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}

	return &Postgres{db: db}, nil
}

// Append validates and stores a trade.
func (p *Postgres) Append(ctx context.Context, trade core.Trade) (core.Trade, error) {
	trade = trade.Normalize()
	if err := trade.Validate(); err != nil {
		return core.Trade{}, err
	}
	trade.ID = uuid.NewString()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO trades (trade_id, symbol, trade_date, quantity, price, side, fees)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		trade.ID, trade.Symbol, trade.Date, trade.Quantity, trade.Price, string(trade.Side), trade.Fees,
	)
	if err != nil {
		return core.Trade{}, core.WrapError(core.ErrStoreFailed, err)
	}
	return trade, nil
}

// ListAll returns all trades ordered by trade date, then insertion order.
func (p *Postgres) ListAll(ctx context.Context) ([]core.Trade, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT trade_id, symbol, trade_date, quantity, price, side, fees
		 FROM trades ORDER BY trade_date, id`)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	var trades []core.Trade
	for rows.Next() {
		var t core.Trade
		var side string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Date, &t.Quantity, &t.Price, &side, &t.Fees); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		t.Side = core.Side(side)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return trades, nil
}

// Clear removes all trades.
func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
