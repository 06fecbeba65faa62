package httpx

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"stockservice/internal/stock"
)

// MaxBodyExcerpt bounds the upstream body kept in errors and logs.
const MaxBodyExcerpt = 500

// BodyExcerpt reads at most MaxBodyExcerpt bytes of r, trimmed to a valid
// UTF-8 boundary.
func BodyExcerpt(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, MaxBodyExcerpt))
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}

// IsTimeout reports whether err is a deadline expiry, either from the
// request context or from the client's own timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// TransportError maps a failed round trip to an UpstreamTransportError.
// Deadline expiry is reported as 504; other failures carry no status.
func TransportError(upstream string, err error) *stock.UpstreamTransportError {
	status := 0
	if IsTimeout(err) {
		status = http.StatusGatewayTimeout
	}
	return &stock.UpstreamTransportError{Upstream: upstream, Status: status, Err: err}
}

// StatusError builds an UpstreamTransportError from a non-2xx response. The
// response body is consumed.
func StatusError(upstream string, res *http.Response) *stock.UpstreamTransportError {
	return &stock.UpstreamTransportError{
		Upstream: upstream,
		Status:   res.StatusCode,
		Body:     BodyExcerpt(res.Body),
	}
}

// IsSuccess reports a 2xx status code.
func IsSuccess(code int) bool { return code >= 200 && code < 300 }
