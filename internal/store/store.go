// Package store adapts catalog search results to the record shape an e-book
// manager host displays: one row per book, a format label, a format to
// download mapping and a DRM status.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/billmal071/libgenfic/internal/libgen"
)

// DRMStatus describes whether a result is DRM protected
type DRMStatus int

const (
	DRMUnknown DRMStatus = iota
	DRMLocked
	DRMUnlocked
)

func (s DRMStatus) String() string {
	switch s {
	case DRMLocked:
		return "locked"
	case DRMUnlocked:
		return "unlocked"
	}
	return "unknown"
}

// DefaultMaxResults is used when the host does not pass a limit
const DefaultMaxResults = 10

// DefaultTimeout is used when the host does not pass a timeout
const DefaultTimeout = 60 * time.Second

// Result is one normalized search result
type Result struct {
	Title     string
	Author    string
	Series    string
	Language  string
	ContentID string
	DetailURL string
	// Formats lists the Downloads keys upper-cased, comma separated
	Formats string
	// Downloads maps a lower-case format to a link. Only the first mirror of
	// a book is used; ResolveDownloads swaps it for a direct link.
	Downloads map[string]string
	DRM       DRMStatus
	CoverURL  string

	mirror libgen.Mirror
}

// Mirror returns the mirror the result was built from
func (r *Result) Mirror() libgen.Mirror {
	return r.mirror
}

// Options tunes how results are presented
type Options struct {
	// Decorate appends the language and the mirror size to titles
	Decorate bool
	// Request is the template for every search; its Query is replaced
	Request libgen.SearchRequest
}

// Store is the host-facing search provider
type Store struct {
	client libgen.Searcher
	opts   Options
}

// New creates a store on top of a catalog client
func New(client libgen.Searcher, opts Options) *Store {
	return &Store{client: client, opts: opts}
}

// Search runs query and returns at most maxResults normalized results.
// Books without any mirror are left out since there is nothing to acquire.
func (s *Store) Search(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]*Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := s.opts.Request
	req.Query = query

	found, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	books := found.Books
	if len(books) > maxResults {
		books = books[:maxResults]
	}

	results := make([]*Result, 0, len(books))
	for _, book := range books {
		r := s.normalize(book)
		if r.Formats == "" {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Store) normalize(book *libgen.Book) *Result {
	r := &Result{
		Title:     book.Title,
		Author:    book.Author(),
		Series:    book.Series,
		Language:  book.Language,
		ContentID: book.ContentID,
		DetailURL: s.client.DetailURL(book.ContentID),
		Downloads: make(map[string]string),
		DRM:       DRMUnlocked,
		CoverURL:  book.CoverURL,
	}

	if book.HasMirrors() {
		r.mirror = book.Mirrors[0]
		r.Downloads[strings.ToLower(r.mirror.Format)] = r.mirror.URL
		r.Formats = strings.ToUpper(r.mirror.Format)
	}

	if s.opts.Decorate {
		r.Title = decorate(r.Title, r.Language, r.mirror)
	}
	return r
}

// decorate renders "Title [Language] (2.1 MB)"
func decorate(title, language string, m libgen.Mirror) string {
	if language != "" {
		title = fmt.Sprintf("%s [%s]", title, language)
	}
	if m.Size != "" {
		title = fmt.Sprintf("%s (%s %s)", title, m.Size, m.Unit)
	}
	return title
}

// ResolveDownloads replaces the mirror page links of r with direct links.
// The result is left untouched when resolution fails.
func (s *Store) ResolveDownloads(ctx context.Context, r *Result) error {
	resolved := make(map[string]string, len(r.Downloads))
	for format, link := range r.Downloads {
		direct, err := s.client.DownloadURL(ctx, link)
		if err != nil {
			return fmt.Errorf("resolve %s download of %q: %w", format, r.Title, err)
		}
		resolved[format] = direct
	}
	r.Downloads = resolved
	return nil
}

// DetailURL returns the catalog page of a content id
func (s *Store) DetailURL(contentID string) string {
	return s.client.DetailURL(contentID)
}

// DownloadURL resolves a content id or mirror page to a direct link
func (s *Store) DownloadURL(ctx context.Context, idOrURL string) (string, error) {
	return s.client.DownloadURL(ctx, idOrURL)
}
