package libgen

import (
	"context"
	"fmt"
)

// Client searches the fiction catalog of one mirror. It only holds
// configuration fixed at construction, so one value may be shared by
// concurrent callers as long as its Fetcher is safe for concurrent use.
type Client struct {
	site     Site
	baseURL  string
	fetcher  Fetcher
	parser   *Parser
	resolver *Resolver
	logf     Logf
}

type clientOptions struct {
	mirror     string
	layout     string
	custom     *Layout
	scheme     string
	fetcher    Fetcher
	candidates []string
	logf       Logf
}

// Option configures a Client
type Option func(*clientOptions)

// WithMirror selects the catalog host; empty means the first known mirror
func WithMirror(host string) Option {
	return func(o *clientOptions) { o.mirror = host }
}

// WithLayout overrides the built-in layout the selected mirror would use
func WithLayout(name string) Option {
	return func(o *clientOptions) { o.layout = name }
}

// WithCustomLayout uses a caller supplied layout instead of a built-in one
func WithCustomLayout(l Layout) Option {
	return func(o *clientOptions) { o.custom = &l }
}

// WithScheme sets the URL scheme of the catalog host
func WithScheme(scheme string) Option {
	return func(o *clientOptions) { o.scheme = scheme }
}

// WithFetcher replaces the default colly fetcher
func WithFetcher(f Fetcher) Option {
	return func(o *clientOptions) { o.fetcher = f }
}

// WithCandidates sets the mirror page templates tried by DownloadURL
func WithCandidates(templates []string) Option {
	return func(o *clientOptions) { o.candidates = templates }
}

// WithLogf sets the diagnostic logger
func WithLogf(logf Logf) Option {
	return func(o *clientOptions) { o.logf = logf }
}

// NewClient creates a catalog client
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{logf: discardLogf}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logf == nil {
		o.logf = discardLogf
	}

	site := SelectSite(o.mirror)
	if o.layout != "" {
		site.Layout = o.layout
	}

	layout, ok := LookupLayout(site.Layout)
	if o.custom != nil {
		layout, ok = *o.custom, true
		site.Layout = layout.Name
	}
	if !ok {
		return nil, fmt.Errorf("unknown layout %q (known: %v)", site.Layout, LayoutNames())
	}

	baseURL := site.BaseURL(o.scheme)
	parser, err := NewParser(layout, baseURL, o.logf)
	if err != nil {
		return nil, err
	}

	if o.fetcher == nil {
		f, err := NewCollyFetcher(FetchConfig{})
		if err != nil {
			return nil, err
		}
		o.fetcher = f
	}

	return &Client{
		site:     site,
		baseURL:  baseURL,
		fetcher:  o.fetcher,
		parser:   parser,
		resolver: NewResolver(o.fetcher, site.Host, o.candidates, o.logf),
		logf:     o.logf,
	}, nil
}

// Site returns the active mirror
func (c *Client) Site() Site {
	return c.site
}

// BaseURL returns the fiction root of the active mirror
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchURL returns the URL Search would fetch for req
func (c *Client) SearchURL(req SearchRequest) string {
	return BuildSearchURL(c.baseURL, req)
}

// Search fetches and parses the first result page. Fetch failures are
// returned; malformed rows and cells are dropped.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResults, error) {
	searchURL := c.SearchURL(req)
	c.logf("searching %s", searchURL)

	body, err := c.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	results, err := c.parser.ParseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", searchURL, err)
	}

	c.logf("parsed %d result(s) with layout %s", results.Total, c.site.Layout)
	return results, nil
}

// DetailURL returns the catalog page of a book
func (c *Client) DetailURL(contentID string) string {
	return c.baseURL + contentID
}

// DownloadURL resolves a content id or a mirror page URL to a direct link.
// It fails with ErrNoDownloadAvailable when no candidate yields one.
func (c *Client) DownloadURL(ctx context.Context, idOrURL string) (string, error) {
	return c.resolver.Resolve(ctx, idOrURL)
}

// Candidates returns the mirror pages DownloadURL tries for idOrURL
func (c *Client) Candidates(idOrURL string) []string {
	return c.resolver.Candidates(idOrURL)
}
