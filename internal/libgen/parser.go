package libgen

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

const (
	fileDelimiter = " / "
	sizeDelimiter = "\u00a0"
)

// downloadPattern matches anchor text of the form "epub(2.1 MB)"
var downloadPattern = regexp.MustCompile(`^\s*([A-Za-z0-9]+)\s*\(\s*([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]+)\s*\)\s*$`)

// Logf is the logging hook used across the package
type Logf func(format string, args ...any)

func discardLogf(string, ...any) {}

// Parser turns result pages of one layout into books
type Parser struct {
	loc  *locators
	base *url.URL
	logf Logf
}

// NewParser compiles layout. Relative links found in rows are resolved against baseURL.
func NewParser(layout Layout, baseURL string, logf Logf) (*Parser, error) {
	loc, err := layout.compile()
	if err != nil {
		return nil, err
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("base url %q: %w", baseURL, err)
		}
	}

	if logf == nil {
		logf = discardLogf
	}
	return &Parser{loc: loc, base: base, logf: logf}, nil
}

// ParseHTML parses a raw result page
func (p *Parser) ParseHTML(body []byte) (*SearchResults, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return p.Parse(doc), nil
}

// Parse extracts every book of the result table. A page where the row
// locator matches nothing is a valid empty result.
func (p *Parser) Parse(doc *html.Node) *SearchResults {
	rows := queryAll(doc, p.loc.rows)
	if len(rows) == 0 {
		p.logf("layout %s: no result rows matched", p.loc.name)
	}

	books := make([]*Book, 0, len(rows))
	for _, row := range rows {
		book, ok := p.ParseRow(row)
		if !ok {
			continue
		}
		books = append(books, book)
	}

	return &SearchResults{Books: books, Total: len(books)}
}

// ParseRow extracts one book from a table row. It reports false when the row
// has no title, which is how header and filler rows are skipped.
func (p *Parser) ParseRow(row *html.Node) (*Book, bool) {
	authors := p.parseAuthors(row)

	titleNode := firstNode(row, p.loc.title)
	if titleNode == nil {
		return nil, false
	}
	title := htmlquery.InnerText(titleNode)
	if strings.TrimSpace(title) == "" || len(authors) == 0 {
		return nil, false
	}

	series, _ := firstText(row, p.loc.series)
	language, _ := firstText(row, p.loc.language)

	book := &Book{
		Title:     title,
		Authors:   authors,
		Series:    series,
		Language:  language,
		ContentID: contentID(htmlquery.SelectAttr(titleNode, "href")),
		Mirrors:   []Mirror{},
	}

	if p.loc.file != nil {
		book.Mirrors = append(book.Mirrors, p.parseMirrors(row)...)
	}
	if p.loc.downloads != nil {
		book.Mirrors = append(book.Mirrors, p.parseDownloads(row)...)
	}
	if p.loc.cover != nil {
		book.CoverURL = p.parseCover(row)
	}

	return book, true
}

func (p *Parser) parseAuthors(row *html.Node) []string {
	var authors []string
	for _, n := range queryAll(row, p.loc.authors) {
		if name := htmlquery.InnerText(n); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		return []string{UnknownAuthor}
	}
	return authors
}

// parseMirrors builds one mirror per anchor of the mirrors column, all sharing
// the format and size of the file cell. A file cell that does not split
// cleanly drops every mirror of the row.
func (p *Parser) parseMirrors(row *html.Node) []Mirror {
	cell, ok := firstText(row, p.loc.file)
	if !ok {
		p.logf("%v", &ParseStructureError{Field: "file", Reason: "cell not found"})
		return nil
	}

	format, size, unit, err := splitFileCell(cell)
	if err != nil {
		p.logf("%v", err)
		return nil
	}

	var mirrors []Mirror
	for _, a := range queryAll(row, p.loc.mirrors) {
		href := htmlquery.SelectAttr(a, "href")
		if href == "" {
			continue
		}
		mirrors = append(mirrors, Mirror{
			URL:    p.resolve(href),
			Format: format,
			Size:   size,
			Unit:   unit,
		})
	}
	return mirrors
}

// parseDownloads reads anchors that carry their own "format(size unit)" text.
// Anchors that do not match are skipped.
func (p *Parser) parseDownloads(row *html.Node) []Mirror {
	var mirrors []Mirror
	for _, a := range queryAll(row, p.loc.downloads) {
		m := downloadPattern.FindStringSubmatch(htmlquery.InnerText(a))
		if m == nil {
			continue
		}
		href := htmlquery.SelectAttr(a, "href")
		if href == "" {
			continue
		}
		mirrors = append(mirrors, Mirror{
			URL:    p.resolve(href),
			Format: m[1],
			Size:   m[2],
			Unit:   m[3],
		})
	}
	return mirrors
}

// parseCover scans the serialized row, so references hidden inside escaped
// tooltip markup are found too. The matched text is used verbatim.
func (p *Parser) parseCover(row *html.Node) string {
	m := p.loc.cover.FindStringSubmatch(htmlquery.OutputHTML(row, true))
	if len(m) < 2 || m[1] == "" {
		return ""
	}
	return p.resolve(m[1])
}

func (p *Parser) resolve(ref string) string {
	if p.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return p.base.ResolveReference(u).String()
}

// splitFileCell splits "EPUB / 2.1<nbsp>MB" into format, size and unit
func splitFileCell(cell string) (format, size, unit string, err error) {
	cell = strings.TrimSpace(cell)

	parts := strings.Split(cell, fileDelimiter)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", "", &ParseStructureError{Field: "file", Value: cell, Reason: "expected \"format / size\""}
	}

	sizeParts := strings.Split(parts[1], sizeDelimiter)
	if len(sizeParts) != 2 || sizeParts[0] == "" || sizeParts[1] == "" {
		return "", "", "", &ParseStructureError{Field: "file", Value: cell, Reason: "expected non-breaking space between size and unit"}
	}

	return parts[0], sizeParts[0], sizeParts[1], nil
}

// contentID returns the last path segment of a title link
func contentID(href string) string {
	return href[strings.LastIndex(href, "/")+1:]
}
