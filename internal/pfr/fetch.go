// Package pfr scrapes play-by-play tables from pro-football-reference.com.
package pfr

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/logging"
)

const (
	DefaultBaseURL = "https://www.pro-football-reference.com"
	ua             = "Mozilla/5.0 (compatible; PuntOutcomesBot/1.0; +https://example.com/bot)"
)

// Client fetches pages with a browser-like UA and retries on 429 and 5xx.
// Zero values fall back to the defaults below.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Logger  *zap.Logger

	MaxAttempts int           // attempts per request (6)
	Base        time.Duration // base backoff (400ms)
	MaxBackoff  time.Duration // cap per-attempt backoff (6s)
	Cooldown    time.Duration // used on 429 when no Retry-After (7s)
}

func (c *Client) retryConfig() (maxAttempts int, base, maxBackoff, cooldown time.Duration) {
	maxAttempts, base, maxBackoff, cooldown = c.MaxAttempts, c.Base, c.MaxBackoff, c.Cooldown
	if maxAttempts <= 0 {
		maxAttempts = 6
	}
	if base <= 0 {
		base = 400 * time.Millisecond
	}
	if maxBackoff <= 0 {
		maxBackoff = 6 * time.Second
	}
	if cooldown <= 0 {
		cooldown = 7 * time.Second
	}
	return
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	return c.HTTP
}

func parseRetryAfter(h string) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	// HTTP date
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func backoff(attempt int, base, max time.Duration) time.Duration {
	// exponential + jitter, capped
	d := base * time.Duration(1<<attempt)
	j := time.Duration(rand.Intn(250)) * time.Millisecond
	if d+j > max {
		return max
	}
	return d + j
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Get fetches url and returns the body. Respects Retry-After when present.
func (c *Client) Get(ctx context.Context, url, referer string) (string, error) {
	log := logging.OrNop(c.Logger)
	maxAttempts, base, maxBackoff, cooldown := c.retryConfig()
	cl := c.httpClient()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}

		body, status, retryAfter, err := do(cl, req)
		var wait time.Duration
		switch {
		case err != nil:
			lastErr = err
			wait = backoff(attempt, base, maxBackoff)
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("status %d for %s", status, url)
			wait = parseRetryAfter(retryAfter)
			if wait == 0 {
				wait = cooldown
			}
		case status >= 500 && status <= 599:
			lastErr = fmt.Errorf("status %d for %s", status, url)
			wait = backoff(attempt, base, maxBackoff)
		default:
			// non-retryable
			return "", fmt.Errorf("status %d for %s (body len=%d)", status, url, len(body))
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Debug("retrying fetch", zap.String("url", url), zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(lastErr))
		if attempt < maxAttempts-1 {
			if err := sleep(ctx, wait); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("exhausted retries for %s: %w", url, lastErr)
}

func do(cl *http.Client, req *http.Request) (body string, status int, retryAfter string, err error) {
	resp, err := cl.Do(req)
	if err != nil {
		return "", 0, "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, "", err
	}
	return string(b), resp.StatusCode, resp.Header.Get("Retry-After"), nil
}
