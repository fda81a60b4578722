// Package httpx wraps net/http with the retry and backoff policy shared by
// every network adapter: jittered exponential backoff on transport errors,
// 429, and 5xx, honoring Retry-After when the server sends one.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	UserAgent   string
}

type Client struct {
	http *http.Client
	cfg  Config
}

func New(cfg Config) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	raw := float64(c.cfg.BackoffBase) * math.Pow(2, float64(attempt))
	if max := float64(c.cfg.BackoffMax); c.cfg.BackoffMax > 0 && raw > max {
		raw = max
	}
	// Full jitter around the exponential value.
	return time.Duration(raw * (0.8 + 0.4*rand.Float64()))
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleepFor(resp *http.Response, fallback time.Duration) time.Duration {
	if resp == nil {
		return fallback
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.ParseFloat(ra, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return fallback
}

// Get fetches url with query params, retrying per the client policy. The
// returned body is fully read; callers own no connection state.
func (c *Client) Get(ctx context.Context, rawurl string, params url.Values) ([]byte, error) {
	target := rawurl
	if len(params) > 0 {
		target = rawurl + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		if c.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.cfg.UserAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == c.cfg.MaxRetries {
				return nil, err
			}
			if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if retryable(resp.StatusCode) {
			lastErr = fmt.Errorf("http %d from %s", resp.StatusCode, rawurl)
			if attempt == c.cfg.MaxRetries {
				return nil, lastErr
			}
			if err := sleepCtx(ctx, sleepFor(resp, c.backoff(attempt))); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("http %d from %s", resp.StatusCode, rawurl)
		}
		if readErr != nil {
			return nil, readErr
		}
		return body, nil
	}
	return nil, lastErr
}

// GetJSON fetches and decodes a JSON object response.
func (c *Client) GetJSON(ctx context.Context, rawurl string, params url.Values, out any) error {
	body, err := c.Get(ctx, rawurl, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", rawurl, err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
