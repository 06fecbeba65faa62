package service

import (
	"context"

	"github.com/shopspring/decimal"

	"stockservice/internal/stock"
)

//go:generate mockgen -package=service_test -destination=mock_deps_test.go -source=deps.go QuoteFetcher,ProfileFetcher,PurchaseStore

// QuoteFetcher fetches the open/close quote of a symbol on a date.
type QuoteFetcher interface {
	GetOpenClose(ctx context.Context, symbol string, date stock.Date) (stock.Quote, error)
}

// ProfileFetcher scrapes the company profile of a symbol.
type ProfileFetcher interface {
	GetCompanyProfile(ctx context.Context, symbol string) (stock.CompanyProfile, error)
}

// PurchaseStore reads and atomically increments purchase amounts.
type PurchaseStore interface {
	GetPurchase(ctx context.Context, symbol string) (stock.Purchase, bool, error)
	UpsertPurchase(ctx context.Context, symbol string, delta decimal.Decimal) (decimal.Decimal, error)
}
