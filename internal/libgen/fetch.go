package libgen

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/net/proxy"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single page fetch
const DefaultTimeout = 30 * time.Second

// Fetcher retrieves the raw body of a page. Implementations issue exactly one
// request per call and never retry.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchConfig configures the page fetchers
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
	// Proxy is a SOCKS5 address (host:port); empty means direct connections
	Proxy string
}

func (c FetchConfig) withDefaults() FetchConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// CollyFetcher fetches pages with a fresh colly collector per call
type CollyFetcher struct {
	cfg       FetchConfig
	transport http.RoundTripper
}

// NewTransport builds the HTTP transport shared by catalog fetches and file
// downloads, dialing through a SOCKS5 proxy when one is configured
func NewTransport(cfg FetchConfig) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	if cfg.Proxy == "" {
		return transport, nil
	}

	dialer, err := proxy.SOCKS5("tcp", cfg.Proxy, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy %s: %w", cfg.Proxy, err)
	}
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// NewCollyFetcher creates a fetcher using NewTransport
func NewCollyFetcher(cfg FetchConfig) (*CollyFetcher, error) {
	cfg = cfg.withDefaults()

	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &CollyFetcher{cfg: cfg, transport: transport}, nil
}

// requestTimeout is the configured timeout, shortened to the context deadline
func (f *CollyFetcher) requestTimeout(ctx context.Context) time.Duration {
	timeout := f.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return timeout
}

// Fetch implements Fetcher. colly does not take a context, so the visit runs
// in its own goroutine and is abandoned when ctx is done; the request timeout
// never outlives the context deadline.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	timeout := f.requestTimeout(ctx)
	if timeout <= 0 {
		return nil, &FetchError{URL: pageURL, Err: context.DeadlineExceeded}
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := f.visit(pageURL, timeout)
		done <- result{body, err}
	}()

	select {
	case <-ctx.Done():
		return nil, &FetchError{URL: pageURL, Err: ctx.Err()}
	case r := <-done:
		if r.err == nil && ctx.Err() != nil {
			return nil, &FetchError{URL: pageURL, Err: ctx.Err()}
		}
		return r.body, r.err
	}
}

func (f *CollyFetcher) visit(pageURL string, timeout time.Duration) ([]byte, error) {
	collector := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	var body []byte
	var status int

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		return nil, &FetchError{URL: pageURL, StatusCode: status, Err: err}
	}
	collector.Wait()

	if status < 200 || status >= 300 {
		return nil, &FetchError{URL: pageURL, StatusCode: status, Err: fmt.Errorf("unexpected status")}
	}

	return body, nil
}
