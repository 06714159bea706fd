package libgen

import (
	"net/url"
	"strings"
)

// DefaultLanguage is the language filter applied by NewSearchRequest
const DefaultLanguage = "English"

// Criteria restricts which field the query text is matched against
type Criteria string

const (
	CriteriaAny     Criteria = ""
	CriteriaTitle   Criteria = "title"
	CriteriaAuthors Criteria = "authors"
	CriteriaSeries  Criteria = "series"
)

// ParseCriteria maps a user supplied name to a Criteria
func ParseCriteria(s string) (Criteria, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return CriteriaAny, true
	case "title":
		return CriteriaTitle, true
	case "author", "authors":
		return CriteriaAuthors, true
	case "series":
		return CriteriaSeries, true
	}
	return CriteriaAny, false
}

// SearchRequest is a logical catalog query. Empty fields are left out of the URL.
type SearchRequest struct {
	Query    string
	Criteria Criteria
	Language string
	Format   string
}

// NewSearchRequest returns an unrestricted request with the default language filter
func NewSearchRequest(query string) SearchRequest {
	return SearchRequest{
		Query:    query,
		Language: DefaultLanguage,
	}
}

// BuildSearchURL joins the search parameters onto base. Keys are written in a
// fixed order: q, criteria, language, format.
func BuildSearchURL(base string, req SearchRequest) string {
	params := []struct {
		key   string
		value string
	}{
		{"q", req.Query},
		{"criteria", string(req.Criteria)},
		{"language", req.Language},
		{"format", req.Format},
	}

	var parts []string
	for _, p := range params {
		if p.value == "" && p.key != "q" {
			continue
		}
		parts = append(parts, p.key+"="+url.QueryEscape(p.value))
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(parts, "&")
}
