package ghcn

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker/v2"
)

var gzipMagic = []byte{0x1f, 0x8b}

var (
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrCircuitOpen    = errors.New("feed circuit breaker open")
)

// RetryPolicy bounds the retries made for one station file.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		MinWait:    time.Second,
		MaxWait:    30 * time.Second,
	}
}

// Client downloads station files. All requests share one circuit breaker so a
// dead feed fails the remaining stations fast instead of waiting out every retry.
type Client struct {
	urlTemplate string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	retry       RetryPolicy
	logger      *slog.Logger
	wait        func(ctx context.Context, d time.Duration) error
}

type ClientOption func(*Client)

// WithWaitFunc replaces the backoff sleep; tests use it to skip real delays.
func WithWaitFunc(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		c.wait = fn
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a feed client. urlTemplate holds a single %s for the station id.
func NewClient(urlTemplate string, httpClient *http.Client, retry RetryPolicy, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	c := &Client{
		urlTemplate: urlTemplate,
		httpClient:  httpClient,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "ghcn-feed",
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// A 404 for one station says nothing about the health of the feed.
			IsSuccessful: func(err error) bool {
				var se *statusError
				if errors.As(err, &se) {
					return se.code < 500 && se.code != http.StatusTooManyRequests
				}
				return err == nil
			},
		}),
		retry:  retry,
		logger: slog.Default(),
		wait:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StationURL returns the feed URL for a station.
func (c *Client) StationURL(stationID string) string {
	return fmt.Sprintf(c.urlTemplate, stationID)
}

// FetchStation downloads and parses the file for stationID, keeping only the
// given elements (all elements when none are given).
func (c *Client) FetchStation(ctx context.Context, stationID string, elements ...string) ([]Observation, error) {
	url := c.StationURL(stationID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close feed body", "station_id", stationID, "error", err)
		}
	}()

	body, err := decodeBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	return ParseCSV(body, stationID, elements...)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				_ = resp.Body.Close()
				return nil, &statusError{code: resp.StatusCode}
			}
			return resp, nil
		})
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		lastErr = err
		if !retryable(err) || attempt >= c.retry.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff(attempt)
		c.logger.Debug("feed request failed, retrying",
			"url", url,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		if err := c.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.retry.MinWait << attempt
	if c.retry.MaxWait > 0 && (d > c.retry.MaxWait || d <= 0) {
		d = c.retry.MaxWait
	}
	return d
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrUpstreamStatus, e.code, http.StatusText(e.code))
}

func (e *statusError) Unwrap() error {
	return ErrUpstreamStatus
}

// retryable reports whether another attempt could succeed: transport errors,
// rate limiting and server errors. Other 4xx responses are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

// decodeBody unwraps gzip bodies (the feed also publishes .csv.gz files).
// Detection is by magic bytes since the transport may already have decoded
// a Content-Encoding: gzip response.
func decodeBody(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(2)
	if !bytes.Equal(magic, gzipMagic) {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return zr, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
