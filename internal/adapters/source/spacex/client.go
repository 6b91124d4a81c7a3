// Package spacex is a small resilient client for the public SpaceX v4 REST API
package spacex

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"launchpipe/internal/platform/config"
	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	baseURLDefault   = "https://api.spacexdata.com/v4"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "launchpipe-ingest"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
	defaultPageSize  = 100
	defaultMaxPages  = 50
	maxBody          = 32 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport errors, 429 and 5xx
	MaxRetries int
	RetryBase  time.Duration

	// Paging for the filtered query
	PageSize int
	MaxPages int

	// MassLookup resolves payload masses through /payloads/query
	MassLookup bool
}

// OptionsFrom reads SOURCE_SPACEX_* keys
func OptionsFrom(cfg config.Conf) Options {
	c := cfg.Prefix("SOURCE_SPACEX_")
	return Options{
		BaseURL:    c.MayString("BASE_URL", baseURLDefault),
		UserAgent:  c.MayString("USER_AGENT", defaultUA),
		Timeout:    c.MayDuration("TIMEOUT", defaultTimeout),
		MaxRetries: c.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:  c.MayDuration("RETRY_BASE", defaultRetryBase),
		PageSize:   c.MayInt("PAGE_SIZE", defaultPageSize),
		MaxPages:   c.MayInt("MAX_PAGES", defaultMaxPages),
		MassLookup: c.MayBool("MASS_LOOKUP", true),
	}
}

// Client talks to the launches and payloads endpoints
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	calls atomic.Int64
	reqs  *prometheus.CounterVec
	now   func() time.Time
	pause func(context.Context, time.Duration) error
}

// NewClient creates a Client with defaults filled in; reg may be nil
func NewClient(o Options, reg *metrics.Registry) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = defaultMaxPages
	}
	if reg == nil {
		reg = metrics.NewBare()
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("spacex"),
		reqs:  reg.CounterVec("source", "requests_total", "Upstream SpaceX API requests by endpoint and status", "endpoint", "status"),
		now:   time.Now,
		pause: pause,
	}
}

// Calls returns how many HTTP round trips the client has made, retries included
func (c *Client) Calls() int64 { return c.calls.Load() }

// do issues one logical request with retries; body may be nil
// the caller owns the returned response body
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "spacex %s %s", method, path)
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "spacex new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)
		c.calls.Add(1)

		if err != nil {
			c.reqs.WithLabelValues(path, "error").Inc()
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "spacex %s %s failed", method, path)
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("spacex transport error retrying")
			if err := c.pause(ctx, back); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "spacex %s %s: gave up waiting to retry", method, path)
			}
			attempts++
			continue
		}

		c.reqs.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("spacex http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrap(&StatusError{Status: resp.StatusCode, Path: path}, perr.ErrorCodeUnavailable, "spacex retries exhausted")
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", wait).Msg("spacex transient status retrying")
			if err := c.pause(ctx, wait); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "spacex %s %s: gave up waiting to retry", method, path)
			}
			attempts++
			continue
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Wrap(&StatusError{Status: resp.StatusCode, Path: path, Body: string(tail)}, perr.ErrorCodeUnavailable, "spacex unexpected status")
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d
}

// pause waits d, never longer than maxBackoff, and returns early with ctx's error
// once ctx ends
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(min(d, maxBackoff))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }
