// Package pricefeed reads the USD exchange rate of the collection's currency
// from a public price API.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// FallbackRate is served whenever the feed cannot be read.
	FallbackRate = 0.7

	defaultBaseURL = "https://api.coingecko.com/api/v3"
	defaultCoinID  = "polygon-ecosystem-token"
	defaultMaxAge  = time.Minute
)

// Quote is a USD rate and the time it was obtained.
type Quote struct {
	USD      float64
	At       time.Time
	Fallback bool
}

type Client struct {
	baseURL    string
	coinID     string
	httpClient *http.Client
	maxAge     time.Duration
	now        func() time.Time

	mu   sync.Mutex
	last Quote
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(baseURL); s != "" {
			c.baseURL = strings.TrimRight(s, "/")
		}
	}
}

func WithCoinID(coinID string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(coinID); s != "" {
			c.coinID = s
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMaxAge sets how long a live quote is reused. Zero disables reuse.
func WithMaxAge(d time.Duration) Option {
	return func(c *Client) {
		c.maxAge = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		coinID:     defaultCoinID,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxAge:     defaultMaxAge,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rate never fails: any transport, status or decoding problem yields a
// quote at FallbackRate.
func (c *Client) Rate(ctx context.Context) Quote {
	now := c.now()

	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if !last.Fallback && last.USD > 0 && now.Sub(last.At) < c.maxAge {
		return last
	}

	usd, err := c.fetch(ctx)
	if err != nil {
		slog.Warn("price feed unavailable, using fallback rate", "coin", c.coinID, "fallback", FallbackRate, "err", err)
		return Quote{USD: FallbackRate, At: now, Fallback: true}
	}

	q := Quote{USD: usd, At: now}
	c.mu.Lock()
	c.last = q
	c.mu.Unlock()
	return q
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(c.coinID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return 0, fmt.Errorf("pricefeed: unexpected status %d", res.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&payload); err != nil {
		return 0, fmt.Errorf("pricefeed: decode response: %w", err)
	}
	usd, ok := payload[c.coinID]["usd"]
	if !ok {
		return 0, errors.New("pricefeed: usd price missing from response")
	}
	if usd <= 0 || math.IsNaN(usd) || math.IsInf(usd, 0) {
		return 0, fmt.Errorf("pricefeed: invalid usd price %v", usd)
	}
	return usd, nil
}
