package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, cfg.Cache.TTL())
	require.Equal(t, DriverSQLite, cfg.Database.Driver)
	require.Equal(t, "en-US,en;q=0.9", cfg.MarketWatch.AcceptLanguage)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	// Arrange: a file overriding a few fields and env overriding one of them.
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
polygon:
  base_url: https://example.test/v1/open-close
  api_key: from-file
cache:
  ttl_sec: 5
database:
  driver: postgres
  host: db.internal
`), 0o600))

	t.Setenv("POLYGON_API_KEY", "from-env")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CACHE_MAX_ITEMS", "not-a-number")

	// Act:
	cfg, err := Load(path)

	// Assert:
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "https://example.test/v1/open-close", cfg.Polygon.BaseURL)
	require.Equal(t, "from-env", cfg.Polygon.APIKey)
	require.Equal(t, 5*time.Second, cfg.Cache.TTL())
	require.Equal(t, 10000, cfg.Cache.MaxItems)
	require.Equal(t, DriverPostgres, cfg.Database.Driver)
	require.Equal(t, 6543, cfg.Database.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mysql"
	cfg.Upstream.TimeoutSec = 0

	err := cfg.Validate()
	require.ErrorContains(t, err, "polygon.api_key")
	require.ErrorContains(t, err, `"mysql"`)
	require.ErrorContains(t, err, "upstream.timeout_sec")
}

func TestPostgresDSN(t *testing.T) {
	d := Database{Host: "localhost", Port: 5432, Name: "stocks", User: "app", Password: "p w'd", SSLMode: "disable"}
	require.Equal(t, `host=localhost port=5432 dbname=stocks user=app password='p w\'d' sslmode=disable`, d.PostgresDSN())

	d.DSN = "postgres://u@h/db"
	require.Equal(t, "postgres://u@h/db", d.PostgresDSN())
}
