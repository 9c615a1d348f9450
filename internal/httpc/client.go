// Package httpc provides the shared HTTP client and the small request and
// response helpers used to talk to the PTZ backend and the autotrack API.
// Use this instead of http.DefaultClient to ensure timeouts are set.
package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client is a shared HTTP client with production-ready defaults.
var Client = NewClient(DefaultTimeout)

// NewClient creates a new HTTP client with the specified timeout.
// Command dispatch uses a short timeout so a stalled backend cannot pile up
// requests behind it.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewJSONRequest builds a request whose body is v encoded as JSON.
func NewJSONRequest(ctx context.Context, method, url string, v any) (*http.Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// OK reports whether status is 2xx.
func OK(status int) bool {
	return status >= 200 && status <= 299
}

// Drain returns up to limit bytes of r as trimmed text and discards the rest,
// so the connection can be reused. The caller still closes the body.
func Drain(r io.Reader, limit int64) string {
	var b []byte
	if limit > 0 {
		b, _ = io.ReadAll(io.LimitReader(r, limit))
	}
	_, _ = io.Copy(io.Discard, r)
	return strings.TrimSpace(string(b))
}
