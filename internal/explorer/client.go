// Package explorer holds the REST plumbing shared by the explorer-backed
// chain adapters: one rate-limited, retrying HTTP client plus thin typed
// wrappers for each upstream API (sochain, haskoin, etherscan, ethplorer,
// subscan, binance dex, cosmos LCD).
package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned by lookups for entities the upstream API does not
// know about (transaction hashes, addresses).
var ErrNotFound = errors.New("not found")

const (
	defaultTimeout  = 30 * time.Second
	defaultRetries  = 2
	defaultRPS      = 5
	retryBackoff    = 500 * time.Millisecond
	maxResponseSize = 8 << 20 // 8 MiB
)

// APIError is a non-2xx response from an upstream API.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client is the shared HTTP layer for explorer APIs. Requests are rate
// limited and retried on 429/5xx responses.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	retries    int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// New creates an explorer client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRPS), 1),
		logger:     zap.NewNop(),
		retries:    defaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, url, "", nil, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}
	return nil
}

// PostJSON issues a POST request with a JSON payload and decodes the JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out interface{}) error {
	return c.PostJSONWithHeaders(ctx, url, nil, payload, out)
}

// PostJSONWithHeaders is PostJSON with extra request headers, for APIs that
// authenticate with a key header.
func (c *Client) PostJSONWithHeaders(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, url, "application/json", headers, data)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}
	return nil
}

// PostRaw issues a POST request with an arbitrary body and returns the raw
// response bytes. Used for raw transaction broadcast endpoints.
func (c *Client) PostRaw(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, contentType, nil, body)
}

// do performs one rate-limited request with bounded retries on 429 and 5xx.
func (c *Client) do(ctx context.Context, method, url, contentType string, headers map[string]string, payload []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.doOnce(ctx, method, url, contentType, headers, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		c.logger.Debug("retrying explorer request",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, url, contentType string, headers map[string]string, payload []byte) (body []byte, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, apiErr
	}

	return body, false, nil
}
