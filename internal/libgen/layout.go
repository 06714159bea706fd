package libgen

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Built-in layout names
const (
	LayoutFiction            = "fiction"
	LayoutFictionSecondTable = "fiction-second-table"
	LayoutFictionLastTable   = "fiction-last-table"
	LayoutDownloads          = "downloads"
)

// coverPattern finds an embedded image reference in serialized row markup.
// Tooltips carry the image as escaped markup, so the quote may be an entity.
const coverPattern = `(?:<|&lt;)img[^>]*?src=(?:"|&#34;|&quot;|\\"|'|&#39;)([^"'&\\]+)`

// Layout addresses the parts of a result page for one revision of the site.
// Rows is evaluated against the document; every other expression is relative
// to a row. Empty expressions are skipped.
type Layout struct {
	Name      string
	Rows      string
	Authors   string
	Series    string
	Title     string
	Language  string
	File      string
	Mirrors   string
	Downloads string
	Cover     string
}

var fictionColumns = Layout{
	Authors:  "./td[1]/ul/li/a",
	Series:   "./td[2]",
	Title:    "./td[3]/p/a",
	Language: "./td[4]",
	File:     "./td[5]",
	Mirrors:  "./td[6]//a",
	Cover:    coverPattern,
}

var layouts = map[string]Layout{
	LayoutFiction:            withRows(fictionColumns, LayoutFiction, "/html/body/table/tbody/tr"),
	LayoutFictionSecondTable: withRows(fictionColumns, LayoutFictionSecondTable, "(//table)[2]/tbody/tr"),
	LayoutFictionLastTable:   withRows(fictionColumns, LayoutFictionLastTable, "(//table)[last()]/tbody/tr"),
	LayoutDownloads: {
		Name:      LayoutDownloads,
		Rows:      "(//table)[last()]/tbody/tr",
		Authors:   "./td[1]//a",
		Series:    "./td[2]",
		Title:     "./td[3]//a",
		Language:  "./td[4]",
		Downloads: "./td[5]//a",
		Cover:     coverPattern,
	},
}

func withRows(l Layout, name, rows string) Layout {
	l.Name = name
	l.Rows = rows
	return l
}

// LookupLayout returns a built-in layout by name
func LookupLayout(name string) (Layout, bool) {
	l, ok := layouts[name]
	return l, ok
}

// LayoutNames returns the names of the built-in layouts, sorted
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// locators is a Layout with every expression compiled
type locators struct {
	name      string
	rows      *xpath.Expr
	authors   *xpath.Expr
	series    *xpath.Expr
	title     *xpath.Expr
	language  *xpath.Expr
	file      *xpath.Expr
	mirrors   *xpath.Expr
	downloads *xpath.Expr
	cover     *regexp.Regexp
}

// Validate checks that every expression of the layout compiles
func (l Layout) Validate() error {
	_, err := l.compile()
	return err
}

func (l Layout) compile() (*locators, error) {
	if l.Rows == "" {
		return nil, fmt.Errorf("layout %q: rows expression is required", l.Name)
	}
	if l.Title == "" {
		return nil, fmt.Errorf("layout %q: title expression is required", l.Name)
	}

	loc := &locators{name: l.Name}
	exprs := []struct {
		field string
		src   string
		dst   **xpath.Expr
	}{
		{"rows", l.Rows, &loc.rows},
		{"authors", l.Authors, &loc.authors},
		{"series", l.Series, &loc.series},
		{"title", l.Title, &loc.title},
		{"language", l.Language, &loc.language},
		{"file", l.File, &loc.file},
		{"mirrors", l.Mirrors, &loc.mirrors},
		{"downloads", l.Downloads, &loc.downloads},
	}
	for _, e := range exprs {
		if e.src == "" {
			continue
		}
		expr, err := xpath.Compile(e.src)
		if err != nil {
			return nil, fmt.Errorf("layout %q: %s expression %q: %w", l.Name, e.field, e.src, err)
		}
		*e.dst = expr
	}

	if l.Cover != "" {
		re, err := regexp.Compile(l.Cover)
		if err != nil {
			return nil, fmt.Errorf("layout %q: cover pattern: %w", l.Name, err)
		}
		loc.cover = re
	}
	return loc, nil
}

// queryAll evaluates a compiled expression below node. A nil expression
// matches nothing.
func queryAll(node *html.Node, expr *xpath.Expr) []*html.Node {
	if node == nil || expr == nil {
		return nil
	}
	return htmlquery.QuerySelectorAll(node, expr)
}

// firstText returns the text of the first match, and whether there was one
func firstText(node *html.Node, expr *xpath.Expr) (string, bool) {
	nodes := queryAll(node, expr)
	if len(nodes) == 0 {
		return "", false
	}
	return htmlquery.InnerText(nodes[0]), true
}

// firstNode returns the first match or nil
func firstNode(node *html.Node, expr *xpath.Expr) *html.Node {
	nodes := queryAll(node, expr)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}
