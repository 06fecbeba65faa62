package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stockservice/internal/httpx"
	"stockservice/internal/logging"
	"stockservice/internal/stock"
)

// GetOpenClose retrieves the open, close and after-hours prices of a symbol
// on a date. Non-2xx responses and transport failures are returned as
// *stock.UpstreamTransportError; payloads that fail validation as
// *stock.UpstreamShapeError.
func (c *PolygonAPIClient) GetOpenClose(ctx context.Context, symbol string, date stock.Date) (stock.Quote, error) {
	logger := c.logger.With().Str("symbol", symbol).Str("date", date.String()).Logger()

	query := maps.Clone(c.query)
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, url.PathEscape(symbol), date.String(), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return stock.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		terr := httpx.TransportError(stock.UpstreamQuotes, err)
		logging.LogAPICall(logger, stock.UpstreamQuotes, c.baseURL, time.Since(start), err)
		logger.Error().Int("status", terr.Status).Err(err).Msg("quote request failed")
		return stock.Quote{}, terr
	}
	defer res.Body.Close()

	if !httpx.IsSuccess(res.StatusCode) {
		serr := httpx.StatusError(stock.UpstreamQuotes, res)
		logging.LogAPICall(logger, stock.UpstreamQuotes, c.baseURL, time.Since(start), serr)
		logger.Error().
			Int("status", serr.Status).
			Str("api_message", apiMessage(res.Header.Get("Content-Type"), serr.Body)).
			Str("body", serr.Body).
			Msg("quote request failed")
		return stock.Quote{}, serr
	}

	var body map[string]any
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if httpx.IsTimeout(err) {
			return stock.Quote{}, httpx.TransportError(stock.UpstreamQuotes, err)
		}
		shape := &stock.UpstreamShapeError{Upstream: stock.UpstreamQuotes, Details: []string{"decoding response: " + err.Error()}}
		logger.Error().Int("status", res.StatusCode).Err(shape).Msg("quote payload invalid")
		return stock.Quote{}, shape
	}

	quote, details := parseOpenClose(body)
	if len(details) > 0 {
		shape := &stock.UpstreamShapeError{Upstream: stock.UpstreamQuotes, Details: details}
		logger.Error().Int("status", res.StatusCode).Strs("details", details).Msg("quote payload invalid")
		return stock.Quote{}, shape
	}

	logging.LogAPICall(logger, stock.UpstreamQuotes, c.baseURL, time.Since(start), nil)
	logger.Info().Msg("quote fetched")
	return quote, nil
}

// parseOpenClose validates the open/close payload. It collects one detail
// per missing or mistyped field instead of stopping at the first.
//
//	{
//	  "status": "OK",
//	  "from": "2023-01-09",
//	  "symbol": "AAPL",
//	  "open": 130.465,
//	  "high": 133.41,
//	  "low": 129.89,
//	  "close": 130.15,
//	  "volume": 70790813,
//	  "afterHours": 129.85,
//	  "preMarket": 129.6
//	}
func parseOpenClose(body map[string]any) (stock.Quote, []string) {
	var (
		q       stock.Quote
		details []string
	)
	fail := func(format string, args ...any) {
		details = append(details, fmt.Sprintf(format, args...))
	}

	requireString := func(key string) string {
		v, err := parseNullableValue[string](body, key)
		switch {
		case err != nil:
			fail("%s: %v", key, err)
		case v == nil:
			fail("%s: missing", key)
		default:
			return *v
		}
		return ""
	}

	price := func(key string, optional bool) *float64 {
		n, err := parseNullableValue[json.Number](body, key)
		switch {
		case err != nil:
			fail("%s: %v", key, err)
			return nil
		case n == nil:
			if !optional {
				fail("%s: missing", key)
			}
			return nil
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			fail("%s: not a number: %s", key, *n)
			return nil
		}
		if f < 0 {
			fail("%s: negative: %s", key, *n)
			return nil
		}
		return &f
	}

	q.Status = requireString("status")
	q.Symbol = requireString("symbol")
	if from := requireString("from"); from != "" {
		d, err := stock.ParseDate(from)
		if err != nil {
			fail("from: not a YYYY-MM-DD date: %q", from)
		}
		q.RequestDate = d
	}

	if v := price("open", false); v != nil {
		q.Open = *v
	}
	if v := price("high", false); v != nil {
		q.High = *v
	}
	if v := price("low", false); v != nil {
		q.Low = *v
	}
	if v := price("close", false); v != nil {
		q.Close = *v
	}
	q.PreMarket = price("preMarket", true)
	q.AfterHours = price("afterHours", true)

	vol, err := parseNullableValue[json.Number](body, "volume")
	switch {
	case err != nil:
		fail("volume: %v", err)
	case vol == nil:
		fail("volume: missing")
	default:
		v, err := parseVolume(*vol)
		if err != nil {
			fail("volume: %v", err)
		}
		q.Volume = v
	}

	return q, details
}

// parseVolume accepts integers and integral floats such as 7.0790813e+07.
func parseVolume(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative: %s", n)
		}
		return v, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt64 {
		return 0, fmt.Errorf("not a non-negative integer: %s", n)
	}
	return int64(f), nil
}

// apiMessage extracts the "message" field of a JSON error body.
func apiMessage(contentType, body string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// parseNullableValue is a helper function to parse a nullable value.
func parseNullableValue[T any](data map[string]any, key string) (*T, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	if v, ok := v.(T); ok {
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected type: %T", v)
}
