package marketwatch

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const (
	baseURL = "https://www.marketwatch.com/investing/stock"

	// The site answers 401/403 to default client headers.
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36 OPR/114.0.0.0"
	defaultAcceptLanguage = "en-US,en;q=0.9"
	defaultReferer        = "https://www.google.com/"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=marketwatch_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// MarketWatchClient scrapes company profile pages.
type MarketWatchClient struct {
	// baseURL is the profile page prefix; the lowercased symbol is appended.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains the headers sent with each request.
	header http.Header
	logger zerolog.Logger
}

// MarketWatchClientOption is a configuration option for the MarketWatch client.
type MarketWatchClientOption func(*MarketWatchClient)

// WithBaseURL sets the profile page prefix.
func WithBaseURL(baseURL string) MarketWatchClientOption {
	return func(c *MarketWatchClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) MarketWatchClientOption {
	return func(c *MarketWatchClient) {
		c.httpClient = httpClient
	}
}

// WithHeader overrides headers sent with each request. Empty values are
// ignored so unset config keeps the browser defaults.
func WithHeader(header http.Header) MarketWatchClientOption {
	return func(c *MarketWatchClient) {
		for key, values := range header {
			if len(values) == 0 || values[0] == "" {
				continue
			}
			c.header.Del(key)
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLogger sets the logger used for per-call success and failure entries.
func WithLogger(logger zerolog.Logger) MarketWatchClientOption {
	return func(c *MarketWatchClient) {
		c.logger = logger
	}
}

// NewMarketWatchClient creates a new scrape client sending browser-like
// headers.
func NewMarketWatchClient(options ...MarketWatchClientOption) *MarketWatchClient {
	c := &MarketWatchClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header: http.Header{
			"User-Agent":      []string{defaultUserAgent},
			"Accept-Language": []string{defaultAcceptLanguage},
			"Referer":         []string{defaultReferer},
			"Accept":          []string{"text/html,application/xhtml+xml"},
		},
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}
