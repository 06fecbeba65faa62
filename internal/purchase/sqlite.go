package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"

	"stockservice/internal/stock"
)

// SQLiteStore keeps purchases in a SQLite file. Amounts are stored as TEXT so
// no precision is lost to REAL.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single connection; ":memory:" would otherwise be one database per conn.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS stocks (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		stock_symbol     TEXT NOT NULL UNIQUE,
		purchased_amount TEXT NOT NULL DEFAULT '0'
	)`)
	return err
}

func (s *SQLiteStore) GetPurchase(ctx context.Context, symbol string) (stock.Purchase, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT purchased_amount FROM stocks WHERE stock_symbol = ?`, symbol).Scan(&raw)
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

// UpsertPurchase runs the read-modify-write inside one transaction, with
// writers serialized by the store mutex.
func (s *SQLiteStore) UpsertPurchase(ctx context.Context, symbol string, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := checkDelta(delta); err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	current := decimal.Zero
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT purchased_amount FROM stocks WHERE stock_symbol = ?`, symbol).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return decimal.Zero, fmt.Errorf("failed to read purchase for %s: %w", symbol, err)
	default:
		if current, err = parseAmount(symbol, raw); err != nil {
			return decimal.Zero, err
		}
	}

	total := current.Add(delta).Round(stock.MaxAmountScale)
	_, err = tx.ExecContext(ctx, `INSERT INTO stocks (stock_symbol, purchased_amount) VALUES (?, ?)
		ON CONFLICT (stock_symbol) DO UPDATE SET purchased_amount = excluded.purchased_amount`,
		symbol, total.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to upsert purchase for %s: %w", symbol, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
