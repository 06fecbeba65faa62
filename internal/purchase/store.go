// Package purchase persists the cumulative purchased amount per symbol.
package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"stockservice/internal/stock"
)

// Store reads and atomically increments purchase amounts.
type Store interface {
	// GetPurchase returns the stored amount; ok is false when the symbol
	// has never been purchased.
	GetPurchase(ctx context.Context, symbol string) (p stock.Purchase, ok bool, err error)
	// UpsertPurchase adds delta to the stored amount and returns the new
	// total. Concurrent calls for one symbol never lose an update.
	UpsertPurchase(ctx context.Context, symbol string, delta decimal.Decimal) (decimal.Decimal, error)
	Close() error
}

// ErrNegativeDelta is returned by UpsertPurchase for a delta below zero.
var ErrNegativeDelta = errors.New("purchase delta must not be negative")

// Open returns the store for driver ("postgres" or "sqlite"). For postgres
// dsn is a lib/pq connection string; for sqlite it is a file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	case "sqlite":
		return NewSQLiteStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported purchase store driver %q", driver)
	}
}

func checkDelta(delta decimal.Decimal) error {
	if delta.IsNegative() {
		return ErrNegativeDelta
	}
	return nil
}

func parseAmount(symbol, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse purchased_amount for %s: %w", symbol, err)
	}
	return amount, nil
}
