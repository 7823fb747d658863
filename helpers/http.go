package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
)

// Response is a raw page response. Non-2xx statuses are not errors at this level.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs a single GET request
type Transport interface {
	Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error)
}

// DefaultHeaders returns the browser-like headers sent with every request
func DefaultHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-IN,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
}

// HTTPTransport implements Transport on net/http
type HTTPTransport struct {
	client *http.Client
}

// TransportOption customizes an HTTPTransport
type TransportOption func(*http.Transport)

// WithProxy routes every request through the given HTTP or SOCKS5 proxy
func WithProxy(proxyURL *url.URL) TransportOption {
	return func(t *http.Transport) {
		t.Proxy = http.ProxyURL(proxyURL)
	}
}

// NewHTTPTransport creates a transport. Timeouts are applied per request.
func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	for _, opt := range opts {
		opt(tr)
	}
	return &HTTPTransport{client: &http.Client{Transport: tr}}
}

// Get sends an HTTP GET request with the given headers and converts the body to UTF-8
func (t *HTTPTransport) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Response{StatusCode: resp.StatusCode, Body: bodyBytes}, nil
	}

	body, err := toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// toUTF8 determines the encoding from the Content-Type header and body content
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}
	return buf.Bytes(), nil
}
