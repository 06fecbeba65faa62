// Package service combines quotes, scraped profiles and purchase state into
// stock records, with a short-lived per-symbol cache.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"stockservice/internal/aggregate"
	"stockservice/internal/provider/cache"
	"stockservice/internal/stock"
)

const (
	DefaultCallTimeout = 10 * time.Second
	DefaultCacheTTL    = 60 * time.Second
)

// Service is the read and purchase path used by the HTTP boundary and CLI.
type Service struct {
	quotes   QuoteFetcher
	profiles ProfileFetcher
	store    PurchaseStore

	cache       *cache.Cache
	now         func() time.Time
	callTimeout time.Duration
	logger      zerolog.Logger

	// coalesce concurrent misses per symbol
	sf singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache replaces the default 60s cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock sets the clock used to pick the quote date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithCallTimeout bounds each upstream call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service.
func New(quotes QuoteFetcher, profiles ProfileFetcher, store PurchaseStore, opts ...Option) *Service {
	s := &Service{
		quotes:      quotes,
		profiles:    profiles,
		store:       store,
		now:         time.Now,
		callTimeout: DefaultCallTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(DefaultCacheTTL, 0, s.now)
	}
	return s
}

// Cache exposes the record cache for maintenance jobs.
func (s *Service) Cache() *cache.Cache { return s.cache }

// GetStockRecord returns the merged record for symbol, from cache when a
// fresh entry exists. The quote is for the previous trading day. A failure
// of either upstream fails the call.
func (s *Service) GetStockRecord(ctx context.Context, symbol string) (stock.StockRecord, error) {
	sym, err := stock.NormalizeSymbol(symbol)
	if err != nil {
		return stock.StockRecord{}, err
	}

	if rec, ok := s.cache.Get(sym); ok {
		s.logger.Debug().Str("symbol", sym).Msg("stock record served from cache")
		return rec, nil
	}

	// The flight outlives any single caller; upstream calls stay bounded by
	// callTimeout.
	flightCtx := context.WithoutCancel(ctx)
	seen := s.cache.Generation(sym)
	for {
		v, err, shared := s.sf.Do(sym, func() (any, error) {
			return s.buildRecord(flightCtx, sym)
		})
		if err != nil {
			return stock.StockRecord{}, err
		}
		built := v.(builtRecord)
		// A flight that started before a purchase this caller already saw
		// carries the old amount. Flights started after it cannot, so this
		// loops at most once.
		if built.gen < seen {
			s.logger.Debug().Str("symbol", sym).Msg("shared stock record predates a purchase, rebuilding")
			continue
		}
		if shared {
			s.logger.Debug().Str("symbol", sym).Msg("stock record shared with concurrent request")
		}
		return built.rec, nil
	}
}

// builtRecord is a record with the cache generation it was built against.
type builtRecord struct {
	rec stock.StockRecord
	gen uint64
}

func (s *Service) buildRecord(ctx context.Context, sym string) (builtRecord, error) {
	gen := s.cache.Generation(sym)
	// A flight that finished between our cache miss and Do already stored it.
	if rec, ok := s.cache.Get(sym); ok {
		return builtRecord{rec: rec, gen: gen}, nil
	}
	date := stock.PreviousTradingDay(s.now())

	var (
		quote   stock.Quote
		profile stock.CompanyProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.FetchQuote(gctx, sym, date)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.FetchProfile(gctx, sym)
		return err
	})
	if err := g.Wait(); err != nil {
		return builtRecord{}, err
	}

	p, ok, err := s.store.GetPurchase(ctx, sym)
	if err != nil {
		return builtRecord{}, fmt.Errorf("reading purchase: %w", err)
	}

	rec := aggregate.BuildStockRecord(sym, quote, profile, p, ok)
	if !s.cache.SetIfGeneration(sym, rec, gen) {
		s.logger.Debug().Str("symbol", sym).Msg("purchase landed during fetch, record not cached")
	}
	return builtRecord{rec: rec, gen: gen}, nil
}

// RecordPurchase adds amount to the stored total of symbol, drops any cached
// record for it and returns the new total.
func (s *Service) RecordPurchase(ctx context.Context, symbol string, amount decimal.Decimal) (decimal.Decimal, error) {
	sym, err := stock.NormalizeSymbol(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if err := stock.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	total, err := s.store.UpsertPurchase(ctx, sym, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("recording purchase: %w", err)
	}
	s.cache.Invalidate(sym)

	s.logger.Info().
		Str("symbol", sym).
		Str("amount", amount.String()).
		Str("total", total.String()).
		Msg("purchase recorded")
	return total, nil
}

// FetchQuote fetches the quote of symbol on date without caching. A zero
// date means the previous trading day.
func (s *Service) FetchQuote(ctx context.Context, symbol string, date stock.Date) (stock.Quote, error) {
	sym, err := stock.NormalizeSymbol(symbol)
	if err != nil {
		return stock.Quote{}, err
	}
	if date.IsZero() {
		date = stock.PreviousTradingDay(s.now())
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.quotes.GetOpenClose(ctx, sym, date)
}

// FetchProfile scrapes the profile of symbol without caching.
func (s *Service) FetchProfile(ctx context.Context, symbol string) (stock.CompanyProfile, error) {
	sym, err := stock.NormalizeSymbol(symbol)
	if err != nil {
		return stock.CompanyProfile{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.profiles.GetCompanyProfile(ctx, sym)
}
