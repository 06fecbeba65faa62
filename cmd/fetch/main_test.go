package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stockservice/internal/stock"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	page, err := os.ReadFile(filepath.Join("..", "..", "internal", "provider", "marketwatch", "fixtures", "profile.html"))
	require.NoError(t, err)

	quotes := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"OK","from":%q,"symbol":%q,"open":10,"high":12,"low":9,"close":11,"volume":5000,"preMarket":9.5}`,
			path.Base(r.URL.Path), path.Base(path.Dir(r.URL.Path)))
	}))
	profiles := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(page)
	}))
	t.Cleanup(quotes.Close)
	t.Cleanup(profiles.Close)

	dir := t.TempDir()
	cfg := fmt.Sprintf(`polygon:
  base_url: %s
  api_key: test-key
marketwatch:
  base_url: %s
database:
  driver: sqlite
  sqlite_path: %s
log:
  level: error
  console: false
`, quotes.URL, profiles.URL, filepath.Join(dir, "stocks.db"))
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o600))
	return p
}

func run(t *testing.T, args ...string) []byte {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(t.Context()))
	return out.Bytes()
}

func TestQuoteCmd(t *testing.T) {
	cfg := writeConfig(t)

	var q stock.Quote
	require.NoError(t, json.Unmarshal(run(t, "--config", cfg, "quote", "aapl", "--date", "2024-11-27"), &q))

	require.Equal(t, "AAPL", q.Symbol)
	require.Equal(t, "2024-11-27", q.RequestDate.String())
	require.NotNil(t, q.PreMarket)
	require.Nil(t, q.AfterHours)
}

func TestPurchaseThenStockCmd(t *testing.T) {
	cfg := writeConfig(t)

	var p stock.Purchase
	require.NoError(t, json.Unmarshal(run(t, "--config", cfg, "purchase", "aapl", "3"), &p))
	require.Equal(t, "AAPL", p.Symbol)
	require.True(t, decimal.NewFromInt(3).Equal(p.Amount))

	var rec stock.StockRecord
	require.NoError(t, json.Unmarshal(run(t, "--config", cfg, "stock", "AAPL"), &rec))
	require.Equal(t, stock.Purchased, rec.PurchasedStatus)
	require.Equal(t, "Apple Inc.", rec.CompanyName)
}

func TestProfileCmd(t *testing.T) {
	cfg := writeConfig(t)

	var p stock.CompanyProfile
	require.NoError(t, json.Unmarshal(run(t, "--config", cfg, "profile", "aapl"), &p))
	require.Equal(t, "Apple Inc.", p.CompanyName)
	require.Len(t, p.Performance, 5)
}

func TestPurchaseCmd_RejectsBadAmount(t *testing.T) {
	cfg := writeConfig(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfg, "purchase", "AAPL", "lots"})

	var verr *stock.ValidationError
	require.ErrorAs(t, root.ExecuteContext(t.Context()), &verr)
}
