// Package fetch provides the rate-limited, retrying HTTP client used for
// all crawl traffic. One client instance serializes its requests: the
// throttle records the next permitted request time and sleeps the
// remainder, trading throughput for not getting blocked.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// Config configures a Client.
type Config struct {
	// Delay is the minimum spacing between requests.
	Delay time.Duration
	// Jitter adds a random delay in [0, Jitter) on top of Delay.
	Jitter time.Duration
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int
	// Backoff is the base of the exponential retry backoff.
	Backoff time.Duration
	// Timeout bounds a single request.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// AcceptLanguage is sent on every request when non-empty.
	AcceptLanguage string
	// TLSRelaxedHostPrefixes opts hosts (by prefix) into the relaxed TLS
	// transport without affecting other hosts.
	TLSRelaxedHostPrefixes []string
}

// Client is a throttled, retrying HTTP fetcher. Safe for concurrent use;
// the throttle mutex serializes outbound traffic to one request in flight.
type Client struct {
	httpClient    *http.Client
	relaxedClient *http.Client
	cfg           Config
	log           logger.Interface

	mu          sync.Mutex
	nextAllowed time.Time
}

// NewClient creates a client with the given configuration.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; vnnews-crawler/1.0)"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		relaxedClient: &http.Client{Timeout: cfg.Timeout, Transport: newRelaxedTransport()},
		cfg:           cfg,
		log:           log,
	}
}

// Fetch performs a GET for rawURL, retrying transient failures with
// exponential backoff. It returns the response body on 2xx.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.throttle(ctx); err != nil {
			return nil, err
		}

		body, retryAfter, err := c.doRequest(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !retryableStatus(statusErr.Code) {
			return nil, err
		}

		if attempt < c.cfg.MaxRetries {
			wait := c.cfg.Backoff * (1 << attempt)
			if retryAfter > wait {
				wait = retryAfter
			}
			c.log.Debug("fetch retry",
				"url", rawURL,
				"attempt", attempt+1,
				"wait", wait.String(),
				"error", err.Error(),
			)
			if sleepErr := sleepCtx(ctx, wait); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.cfg.MaxRetries+1, lastErr)
}

// doRequest performs one HTTP GET attempt. On a retryable status it also
// returns the server-supplied Retry-After duration, if any.
func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if c.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	}

	resp, err := c.clientFor(req.URL).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return nil, 0, fmt.Errorf("read response body: %w", readErr)
	}
	return body, 0, nil
}

// clientFor returns the relaxed-TLS client when the host is opted in.
func (c *Client) clientFor(u *url.URL) *http.Client {
	if hostNeedsRelaxedTLS(u.Hostname(), c.cfg.TLSRelaxedHostPrefixes) {
		return c.relaxedClient
	}
	return c.httpClient
}

// throttle sleeps until the next permitted request time, then advances it
// by delay plus jitter. The lock is held across the sleep so requests go
// out one at a time even when the client is shared.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if wait := c.nextAllowed.Sub(now); wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
		now = time.Now()
	}

	spacing := c.cfg.Delay
	if c.cfg.Jitter > 0 {
		spacing += time.Duration(rand.Int63n(int64(c.cfg.Jitter)))
	}
	c.nextAllowed = now.Add(spacing)
	return nil
}

// sleepCtx sleeps for d or returns early when ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter parses a Retry-After header value in seconds form.
// HTTP-date form is rare on the target sites and is ignored.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
