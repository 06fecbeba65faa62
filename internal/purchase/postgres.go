package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	_ "github.com/lib/pq" // PostgreSQL driver

	"stockservice/internal/stock"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS stocks (
		id               SERIAL PRIMARY KEY,
		stock_symbol     TEXT NOT NULL UNIQUE,
		purchased_amount NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (purchased_amount >= 0)
	)
`

// PostgresStore keeps purchases in the stocks table of a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, pings and migrates.
// dsn should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=stocks sslmode=disable"
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate stocks table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// GetPurchase retrieves the purchased amount for symbol.
func (s *PostgresStore) GetPurchase(ctx context.Context, symbol string) (stock.Purchase, bool, error) {
	query := `
		SELECT purchased_amount::text
		FROM stocks
		WHERE stock_symbol = $1
	`

	var raw string
	err := s.db.QueryRowContext(ctx, query, symbol).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stock.Purchase{}, false, nil
		}
		return stock.Purchase{}, false, fmt.Errorf("failed to get purchase for %s: %w", symbol, err)
	}

	amount, err := parseAmount(symbol, raw)
	if err != nil {
		return stock.Purchase{}, false, err
	}
	return stock.Purchase{Symbol: symbol, Amount: amount}, true, nil
}

// UpsertPurchase adds delta in a single statement; the row lock taken by
// ON CONFLICT serializes concurrent increments of one symbol.
func (s *PostgresStore) UpsertPurchase(ctx context.Context, symbol string, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := checkDelta(delta); err != nil {
		return decimal.Zero, err
	}

	query := `
		INSERT INTO stocks (stock_symbol, purchased_amount)
		VALUES ($1, $2::numeric)
		ON CONFLICT (stock_symbol)
		DO UPDATE SET purchased_amount = stocks.purchased_amount + EXCLUDED.purchased_amount
		RETURNING purchased_amount::text
	`

	var raw string
	if err := s.db.QueryRowContext(ctx, query, symbol, delta.String()).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to upsert purchase for %s: %w", symbol, err)
	}
	return parseAmount(symbol, raw)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
