package libgen

import (
	"context"
	"strings"
)

// UnknownAuthor is used when a row carries no author anchor
const UnknownAuthor = "Unknown"

// AuthorSeparator joins multiple author names
const AuthorSeparator = " & "

// Book represents one entry of the fiction catalog
type Book struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Series    string   `json:"series,omitempty"`
	Language  string   `json:"language,omitempty"`
	ContentID string   `json:"md5"`
	CoverURL  string   `json:"cover_url,omitempty"`
	Mirrors   []Mirror `json:"mirrors"`
}

// Author returns the author names joined the way the catalog displays them
func (b *Book) Author() string {
	return strings.Join(b.Authors, AuthorSeparator)
}

// HasMirrors reports whether the book can be acquired at all
func (b *Book) HasMirrors() bool {
	return len(b.Mirrors) > 0
}

// Mirror is a candidate link to a book's file, either direct or a landing page.
// Size and Unit are kept exactly as the catalog renders them.
type Mirror struct {
	URL    string `json:"url"`
	Format string `json:"format"`
	Size   string `json:"size"`
	Unit   string `json:"unit"`
}

// SearchResults holds the books parsed from one result page.
// Total is the number of parsed books, never a server-reported count.
type SearchResults struct {
	Books []*Book `json:"books"`
	Total int     `json:"total"`
}

// Searcher is the part of the client the host-facing layers depend on
type Searcher interface {
	// Search runs a catalog query and parses the first result page
	Search(ctx context.Context, req SearchRequest) (*SearchResults, error)

	// DetailURL returns the catalog page of a book without any network I/O
	DetailURL(contentID string) string

	// DownloadURL resolves a content id or mirror page to a direct link
	DownloadURL(ctx context.Context, idOrURL string) (string, error)
}
