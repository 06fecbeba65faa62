package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `yaml:"port"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

type Upstream struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

type Polygon struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Adjusted bool   `yaml:"adjusted"`
}

type MarketWatch struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	AcceptLanguage string `yaml:"accept_language"`
	Referer        string `yaml:"referer"`
}

type Cache struct {
	TTLSeconds int    `yaml:"ttl_sec"`
	MaxItems   int    `yaml:"max_items"`
	SweepSpec  string `yaml:"sweep_spec"`
}

type Database struct {
	Driver     string `yaml:"driver"` // "postgres" or "sqlite"
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
}

type Log struct {
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`
	File       bool   `yaml:"file"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Config struct {
	Server      Server      `yaml:"server"`
	Upstream    Upstream    `yaml:"upstream"`
	Polygon     Polygon     `yaml:"polygon"`
	MarketWatch MarketWatch `yaml:"marketwatch"`
	Cache       Cache       `yaml:"cache"`
	Database    Database    `yaml:"database"`
	Log         Log         `yaml:"log"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func Default() Config {
	return Config{
		Server:   Server{Port: "8080", RequestTimeoutSec: 30},
		Upstream: Upstream{TimeoutSec: 10},
		Polygon: Polygon{
			BaseURL:  "https://api.polygon.io/v1/open-close",
			Adjusted: true,
		},
		MarketWatch: MarketWatch{
			BaseURL:        "https://www.marketwatch.com/investing/stock",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36 OPR/114.0.0.0",
			AcceptLanguage: "en-US,en;q=0.9",
			Referer:        "https://www.google.com/",
		},
		Cache: Cache{TTLSeconds: 60, MaxItems: 10000, SweepSpec: "@every 1m"},
		Database: Database{
			Driver:     DriverSQLite,
			SQLitePath: "stocks.db",
			Host:       "localhost",
			Port:       5432,
			Name:       "stocks",
			User:       "postgres",
			SSLMode:    "disable",
		},
		Log: Log{Level: "info", Console: true, FilePath: "logs/stockservice.log", MaxSizeMB: 100, MaxBackups: 7, MaxAgeDays: 30},
	}
}

// Load reads YAML config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports configuration that would fail at first use.
func (c Config) Validate() error {
	var errs []error
	if c.Polygon.BaseURL == "" {
		errs = append(errs, errors.New("polygon.base_url is required"))
	}
	if c.Polygon.APIKey == "" {
		errs = append(errs, errors.New("polygon.api_key is required (POLYGON_API_KEY)"))
	}
	if c.MarketWatch.BaseURL == "" {
		errs = append(errs, errors.New("marketwatch.base_url is required"))
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Upstream.TimeoutSec <= 0 {
		errs = append(errs, errors.New("upstream.timeout_sec must be positive"))
	}
	if c.Server.RequestTimeoutSec <= 0 {
		errs = append(errs, errors.New("server.request_timeout_sec must be positive"))
	}
	return errors.Join(errs...)
}

// PostgresDSN returns the configured DSN, or builds a lib/pq key/value DSN
// from the individual connection settings.
func (d Database) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	parts := []string{
		"host=" + quoteDSN(d.Host),
		"port=" + strconv.Itoa(d.Port),
		"dbname=" + quoteDSN(d.Name),
		"user=" + quoteDSN(d.User),
	}
	if d.Password != "" {
		parts = append(parts, "password="+quoteDSN(d.Password))
	}
	if d.SSLMode != "" {
		parts = append(parts, "sslmode="+d.SSLMode)
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (u Upstream) Timeout() time.Duration { return time.Duration(u.TimeoutSec) * time.Second }

func (s Server) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

func (c Cache) TTL() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if x, ok := envInt("UPSTREAM_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Upstream.TimeoutSec = x
	}

	if v := os.Getenv("POLYGON_BASE_URL"); v != "" {
		cfg.Polygon.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Polygon.APIKey = v
	}
	if v := os.Getenv("MARKETWATCH_BASE_URL"); v != "" {
		cfg.MarketWatch.BaseURL = strings.TrimRight(v, "/")
	}

	if x, ok := envInt("CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Cache.TTLSeconds = x
	}
	if x, ok := envInt("CACHE_MAX_ITEMS"); ok && x > 0 {
		cfg.Cache.MaxItems = x
	}

	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if x, ok := envInt("DB_PORT"); ok && x > 0 {
		cfg.Database.Port = x
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Log.File = true
		case "0", "false", "no", "n":
			cfg.Log.File = false
		}
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}
