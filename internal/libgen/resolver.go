package libgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DownloadMarker is the text a direct download anchor carries on a mirror page
const DownloadMarker = "GET"

// Placeholders substituted into candidate templates
const (
	PlaceholderMD5  = "{md5}"
	PlaceholderHost = "{host}"
)

// DefaultCandidates are the mirror pages tried, in order, for a content id
var DefaultCandidates = []string{
	"http://library.lol/fiction/{md5}",
	"http://{host}/get.php?md5={md5}",
}

// errNoMarker means a mirror page loaded but carried no download anchor
var errNoMarker = errors.New("no " + DownloadMarker + " anchor on page")

// Resolver follows mirror pages to a direct download link. It keeps no state
// between calls.
type Resolver struct {
	fetcher    Fetcher
	host       string
	candidates []string
	logf       Logf
}

// NewResolver creates a resolver trying candidates in order. An empty list
// means DefaultCandidates.
func NewResolver(fetcher Fetcher, host string, candidates []string, logf Logf) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	if logf == nil {
		logf = discardLogf
	}
	return &Resolver{
		fetcher:    fetcher,
		host:       host,
		candidates: append([]string(nil), candidates...),
		logf:       logf,
	}
}

// Candidates returns the mirror page URLs that would be tried for idOrURL.
// A value that is already an http(s) URL is its own single candidate.
func (r *Resolver) Candidates(idOrURL string) []string {
	if isPageURL(idOrURL) {
		return []string{idOrURL}
	}

	urls := make([]string, 0, len(r.candidates))
	for _, tmpl := range r.candidates {
		u := strings.ReplaceAll(tmpl, PlaceholderMD5, url.PathEscape(idOrURL))
		u = strings.ReplaceAll(u, PlaceholderHost, r.host)
		urls = append(urls, u)
	}
	return urls
}

// Resolve returns the first direct download link found across the candidates.
// Candidates are tried one after another; the first success wins.
func (r *Resolver) Resolve(ctx context.Context, idOrURL string) (string, error) {
	idOrURL = strings.TrimSpace(idOrURL)
	if idOrURL == "" {
		return "", fmt.Errorf("%w: empty content id", ErrNoDownloadAvailable)
	}

	link, err := firstSuccess(ctx, r.Candidates(idOrURL), func(pageURL string) (string, error) {
		return r.try(ctx, pageURL)
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", fmt.Errorf("%w for %s: %w", ErrNoDownloadAvailable, idOrURL, err)
	}
	return link, nil
}

func (r *Resolver) try(ctx context.Context, pageURL string) (string, error) {
	body, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		r.logf("mirror %s: %v", pageURL, err)
		return "", err
	}

	link, ok := findDownloadLink(body, pageURL)
	if !ok {
		r.logf("mirror %s: %v", pageURL, errNoMarker)
		return "", errNoMarker
	}
	return link, nil
}

// firstSuccess applies try to each candidate in order and stops at the first
// one that succeeds. When every candidate fails the last error is returned.
func firstSuccess(ctx context.Context, candidates []string, try func(string) (string, error)) (string, error) {
	lastErr := errors.New("no candidates")
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		result, err := try(c)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// findDownloadLink returns the href of the first anchor whose text contains
// DownloadMarker. Relative links are resolved against the page.
func findDownloadLink(body []byte, pageURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var link string
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(s.Text(), DownloadMarker) {
			return true
		}
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return true
		}
		link = href
		return false
	})
	if link == "" {
		return "", false
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return link, true
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link, true
	}
	return base.ResolveReference(ref).String(), true
}

func isPageURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
