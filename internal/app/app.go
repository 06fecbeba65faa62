// Package app wires configuration into the stock service. It is shared by
// the HTTP server and the fetch CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"stockservice/internal/config"
	"stockservice/internal/httpx"
	"stockservice/internal/logging"
	"stockservice/internal/provider/cache"
	"stockservice/internal/provider/marketwatch"
	"stockservice/internal/provider/polygon"
	"stockservice/internal/purchase"
	"stockservice/internal/service"
)

type App struct {
	Config  config.Config
	Logger  zerolog.Logger
	Store   purchase.Store
	Service *service.Service
}

// LogConfig maps the log section of the config file to the logger settings.
func LogConfig(c config.Log) logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Level,
		Console:    c.Console,
		File:       c.File,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
	}
}

// StoreDSN returns what purchase.Open expects for the configured driver.
func StoreDSN(d config.Database) string {
	if d.Driver == config.DriverSQLite {
		return d.SQLitePath
	}
	return d.PostgresDSN()
}

// New validates cfg, opens the purchase store and builds the service.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	httpClient := httpx.New(cfg.Upstream.Timeout())

	quotes, err := polygon.NewPolygonAPIClient(
		cfg.Polygon.APIKey,
		polygon.WithBaseURL(cfg.Polygon.BaseURL),
		polygon.WithAdjusted(cfg.Polygon.Adjusted),
		polygon.WithHTTPClient(httpClient),
		polygon.WithLogger(logger.With().Str("component", "polygon").Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("polygon client: %w", err)
	}

	profiles := marketwatch.NewMarketWatchClient(
		marketwatch.WithBaseURL(cfg.MarketWatch.BaseURL),
		marketwatch.WithHTTPClient(httpClient),
		marketwatch.WithHeader(http.Header{
			"User-Agent":      []string{cfg.MarketWatch.UserAgent},
			"Accept-Language": []string{cfg.MarketWatch.AcceptLanguage},
			"Referer":         []string{cfg.MarketWatch.Referer},
		}),
		marketwatch.WithLogger(logger.With().Str("component", "marketwatch").Logger()),
	)

	store, err := purchase.Open(ctx, cfg.Database.Driver, StoreDSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("purchase store: %w", err)
	}

	svc := service.New(quotes, profiles, store,
		service.WithCache(cache.New(cfg.Cache.TTL(), cfg.Cache.MaxItems, nil)),
		service.WithCallTimeout(cfg.Upstream.Timeout()),
		service.WithLogger(logger.With().Str("component", "service").Logger()),
	)

	logger.Info().
		Str("db_driver", cfg.Database.Driver).
		Dur("upstream_timeout", cfg.Upstream.Timeout()).
		Dur("cache_ttl", cfg.Cache.TTL()).
		Msg("stock service ready")

	return &App{Config: cfg, Logger: logger, Store: store, Service: svc}, nil
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
