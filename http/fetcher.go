// Package http provides an HTTP-based implementation of scout.Fetcher.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/scout"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout bounds each request, including reading the body.
const DefaultFetchTimeout = 7 * time.Second

// DefaultUserAgent is sent with every request; some servers reject
// requests with a blank or library-default User-Agent.
const DefaultUserAgent = "Mozilla/5.0"

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// Ensure Fetcher implements scout.Fetcher at compile time.
var _ scout.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages over HTTP using a single shared client.
// Redirects are not followed: the body of the redirect response itself
// is returned. Bodies are returned for every status code and decoded to
// UTF-8 based on the Content-Type header or content sniffing.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (7s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize limits the number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return f
}

// Fetch retrieves the body of the given URL.
// Timeouts are reported as scout.ETIMEOUT, failures to connect or read as
// scout.ETRANSPORT, and undecodable bodies as scout.EPARSE.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", scout.Errorf(scout.ETRANSPORT, "invalid request: %v", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		// Empty bodies, as sent with 204s and most redirects.
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if isTimeout(err) {
			return "", classify(err)
		}
		return "", scout.Errorf(scout.EPARSE, "decode body: %v", err)
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return "", classify(err)
	}

	return string(b), nil
}

// Close releases idle connections held by the shared client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func classify(err error) error {
	if isTimeout(err) {
		return scout.Errorf(scout.ETIMEOUT, "timed out: %v", err)
	}
	return scout.Errorf(scout.ETRANSPORT, "%v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
