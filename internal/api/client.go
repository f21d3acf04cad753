// Package api is the client for the remote Happy Money REST/SSE server. It
// owns the cookie-based auth session, wraps non-streaming calls in a
// circuit breaker with retry, and exposes the diary chat stream entry
// point. The server is authoritative for all persisted data; this client
// never re-derives server-computed values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"happymoney/internal/cache"
	"happymoney/internal/core"
)

// Options tunes the client; zero values fall back to defaults.
type Options struct {
	Timeout        time.Duration // per non-streaming request
	MaxRetries     int
	InitialBackoff time.Duration
	CacheTTL       time.Duration // transaction lookup cache
	CacheSize      int
}

func (o *Options) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 200 * time.Millisecond
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 128
	}
}

type Client struct {
	baseURL string

	// httpClient serves bounded JSON calls; streamClient has no overall
	// timeout because a chat stream lives as long as the reply takes, and
	// is governed by the request context instead.
	httpClient   *http.Client
	streamClient *http.Client

	cb      *gobreaker.CircuitBreaker
	retry   RetryConfig
	txCache *cache.LRUCache[core.Transaction]
}

func NewClient(baseURL string, opts Options) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("api base URL is empty")
	}
	opts.applyDefaults()

	// One jar shared by both transports so the auth cookie follows streams.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Jar: jar, Timeout: opts.Timeout},
		streamClient: &http.Client{Jar: jar},
		cb:           newCircuitBreaker("happymoney-api"),
		retry:        RetryConfig{MaxRetries: opts.MaxRetries, InitialBackoff: opts.InitialBackoff},
		txCache:      cache.NewLRUCache[core.Transaction](opts.CacheSize, opts.CacheTTL),
	}, nil
}

// do performs one JSON request/response exchange.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// doResilient runs do under the circuit breaker with retry. Only used for
// calls that are safe to repeat: reads, and writes the server applies
// last-write-wins.
func (c *Client) doResilient(ctx context.Context, method, path string, query url.Values, body, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, retryWithBackoff(ctx, c.retry, func() error {
			return c.do(ctx, method, path, query, body, out)
		})
	})
	return err
}
