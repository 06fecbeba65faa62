package polygon

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const baseURL = "https://api.polygon.io/v1/open-close"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=polygon_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PolygonAPIClient is a client for the Polygon open/close endpoint.
type PolygonAPIClient struct {
	// baseURL is the open/close endpoint; symbol and date are appended as
	// path segments.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query  url.Values
	logger zerolog.Logger
}

// PolygonAPIClientOption is a configuration option for the Polygon API client.
type PolygonAPIClientOption func(*PolygonAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) PolygonAPIClientOption {
	return func(c *PolygonAPIClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) PolygonAPIClientOption {
	return func(c *PolygonAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) PolygonAPIClientOption {
	return func(c *PolygonAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLogger sets the logger used for per-call success and failure entries.
func WithLogger(logger zerolog.Logger) PolygonAPIClientOption {
	return func(c *PolygonAPIClient) {
		c.logger = logger
	}
}

// WithAdjusted controls whether prices are adjusted for splits.
func WithAdjusted(adjusted bool) PolygonAPIClientOption {
	return func(c *PolygonAPIClient) {
		if adjusted {
			c.query.Set("adjusted", "true")
		} else {
			c.query.Set("adjusted", "false")
		}
	}
}

// NewPolygonAPIClient creates a new Polygon API client.
func NewPolygonAPIClient(key string, options ...PolygonAPIClientOption) (*PolygonAPIClient, error) {
	var polygonAPIClient = &PolygonAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{"adjusted": []string{"true"}},
		logger:     zerolog.Nop(),
	}
	if key != "" {
		// Polygon authenticates with the apiKey query parameter.
		polygonAPIClient.query.Set("apiKey", key)
	}
	for _, option := range options {
		option(polygonAPIClient)
	}
	return polygonAPIClient, nil
}
