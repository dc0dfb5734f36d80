package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nao1215/jobscan/internal/ratelimit"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second
)

// Fetcher retrieves the body of a URL as text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher is the net/http implementation of Fetcher.
// It is safe for concurrent use.
type HTTPFetcher struct {
	client       *http.Client
	limiter      *ratelimit.Limiter
	retry        RetryPolicy
	userAgent    string
	headers      map[string]string
	cookie       string
	maxBodySize  int64
	timeout      time.Duration
	proxyAddress string
	logger       *slog.Logger
	sleep        SleepFunc
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets the underlying client. The proxy and timeout options
// are ignored when a client is supplied.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithLimiter sets the rate limiter consulted before every attempt.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(f *HTTPFetcher) {
		f.limiter = l
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(f *HTTPFetcher) {
		f.retry = p.normalized()
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithCookie sends a raw cookie string ("name=value; other=value") with every request.
func WithCookie(cookie string) Option {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithMaxBodySize caps how many bytes of a body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithProxy routes requests through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(f *HTTPFetcher) {
		f.proxyAddress = address
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSleep replaces the backoff wait. Tests use it to avoid real delays.
func WithSleep(fn SleepFunc) Option {
	return func(f *HTTPFetcher) {
		if fn != nil {
			f.sleep = fn
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
// It fails only when the proxy address is malformed.
func NewHTTPFetcher(opts ...Option) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		retry:       DefaultRetryPolicy(),
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		client, err := newHTTPClient(f.timeout, f.proxyAddress)
		if err != nil {
			return nil, err
		}
		f.client = client
	}
	f.client = withInjectedHeaders(f.client, f.cookie, f.headers)
	return f, nil
}

// Fetch returns the body of rawURL.
//
// Every attempt waits for a rate-limit permit first. Retryable failures are
// retried with exponential backoff; when the last attempt also fails the
// error is a *FetchError of KindTerminal wrapping the final failure.
// Cancellation returns the context error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" {
		return "", ErrEmptyURL
	}

	var last *FetchError
	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", fmt.Errorf("fetch %s: %w", rawURL, err)
		}

		body, ferr := f.do(ctx, rawURL)
		if ferr == nil {
			return body, nil
		}
		ferr.Attempts = attempt

		if ctx.Err() != nil {
			return "", fmt.Errorf("fetch %s: %w", rawURL, ctx.Err())
		}
		if !ferr.Retryable() {
			return "", &ferr.FetchError
		}
		last = &ferr.FetchError
		if attempt == f.retry.MaxAttempts {
			break
		}

		delay := f.retry.Delay(attempt)
		if ferr.retryAfter > 0 {
			delay = min(ferr.retryAfter, f.retry.MaxDelay)
		}
		f.logger.Warn("retrying fetch",
			"url", rawURL,
			"attempt", attempt,
			"kind", ferr.Kind.String(),
			"status", ferr.StatusCode,
			"delay", delay,
			"error", ferr.Err,
		)
		if err := f.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("fetch %s: %w", rawURL, err)
		}
	}

	return "", &FetchError{
		Kind:       KindTerminal,
		URL:        rawURL,
		StatusCode: last.StatusCode,
		Attempts:   f.retry.MaxAttempts,
		Err:        last,
	}
}

// do performs one attempt.
func (f *HTTPFetcher) do(ctx context.Context, rawURL string) (string, *fetchFailure) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &fetchFailure{FetchError: FetchError{Kind: KindNetwork, URL: rawURL, Err: err}}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	f.logger.Debug("fetching", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &fetchFailure{FetchError: FetchError{Kind: KindNetwork, URL: rawURL, Err: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // drained for connection reuse
		return "", &fetchFailure{
			FetchError: FetchError{
				Kind:       KindHTTPStatus,
				URL:        rawURL,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("status %d", resp.StatusCode),
			},
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", &fetchFailure{FetchError: FetchError{Kind: KindNetwork, URL: rawURL, Err: fmt.Errorf("failed to read body: %w", err)}}
	}
	return string(body), nil
}

// fetchFailure carries per-attempt details that never leave the package.
type fetchFailure struct {
	FetchError
	retryAfter time.Duration
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
