package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/db"
	"github.com/billmal071/libgenfic/internal/libgen"
)

func newSearchFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "search"}
	cmd.Flags().BoolP("title", "t", false, "")
	cmd.Flags().BoolP("author", "a", false, "")
	cmd.Flags().BoolP("series", "s", false, "")
	cmd.Flags().StringP("language", "l", "", "")
	cmd.Flags().StringP("format", "f", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return cmd
}

func TestRequestFromFlags(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{Language: "English", Format: "epub"}}

	tests := []struct {
		args []string
		want libgen.SearchRequest
	}{
		{nil, libgen.SearchRequest{Query: "dune", Language: "English", Format: "epub"}},
		{[]string{"-t"}, libgen.SearchRequest{Query: "dune", Criteria: libgen.CriteriaTitle, Language: "English", Format: "epub"}},
		{[]string{"-a", "-l", "German"}, libgen.SearchRequest{Query: "dune", Criteria: libgen.CriteriaAuthors, Language: "German", Format: "epub"}},
		{[]string{"--series", "--language=", "-f", "fb2"}, libgen.SearchRequest{Query: "dune", Criteria: libgen.CriteriaSeries, Format: "fb2"}},
	}
	for _, tt := range tests {
		got := requestFromFlags(newSearchFlags(t, tt.args...), "dune", cfg)
		if got != tt.want {
			t.Errorf("requestFromFlags(%v) = %+v, want %+v", tt.args, got, tt.want)
		}
	}
}

func TestRequestFromHistory(t *testing.T) {
	h := &db.SearchHistory{Query: "mistborn", Filters: db.SearchFilters{Criteria: "series", Language: "English"}}
	got := requestFromHistory(h)
	want := libgen.SearchRequest{Query: "mistborn", Criteria: libgen.CriteriaSeries, Language: "English"}
	if got != want {
		t.Fatalf("requestFromHistory = %+v, want %+v", got, want)
	}
}

func TestMD5FromInput(t *testing.T) {
	const md5 = "2B9F5C4E0A0B8D1C3E4F5A6B7C8D9E0F"
	tests := map[string]string{
		md5:                                   md5,
		strings.ToLower(md5):                  md5,
		"http://library.lol/fiction/" + md5:   md5,
		"http://libgen.rs/get.php?md5=" + md5: md5,
		"http://library.lol/fiction/":         "",
		"not a hash":                          "",
		"http://example.com/main/" + md5[:20]: "",
	}
	for in, want := range tests {
		if got := md5FromInput(in); got != want {
			t.Errorf("md5FromInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFallbackFileName(t *testing.T) {
	d := &db.Download{Title: "Dune: Messiah", Authors: "Frank Herbert", Format: "EPUB"}
	if got := fallbackFileName(d); got != "Frank Herbert - Dune_ Messiah.epub" {
		t.Fatalf("fallbackFileName = %q", got)
	}
}

func TestPrintDebugResults(t *testing.T) {
	found := &libgen.SearchResults{
		Books: []*libgen.Book{
			{Title: "The Way of Kings", Authors: []string{"Brandon Sanderson"}, Series: "Stormlight Archive 1", Language: "English",
				ContentID: "ABC", Mirrors: []libgen.Mirror{{}, {}}},
			{Title: "Words of Radiance", Authors: []string{"Unknown"}, Mirrors: []libgen.Mirror{}},
		},
		Total: 2,
	}

	var out bytes.Buffer
	printDebugResults(&out, found)

	got := out.String()
	for _, want := range []string{
		"Title:    The Way of Kings",
		"Author:   Brandon Sanderson",
		"Series:   Stormlight Archive 1",
		"Mirrors:  2",
		"Mirrors:  0",
		"2 result(s)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, debugRule); n != 3 {
		t.Errorf("expected 3 rule lines, got %d", n)
	}
}

func TestNeedsDB(t *testing.T) {
	if needsDB(configGetCmd) || needsDB(versionCmd) || needsDB(debugCmd) {
		t.Fatalf("config, version and debug commands must not open the database")
	}
	if !needsDB(searchCmd) || !needsDB(historyClearCmd) {
		t.Fatalf("search and history need the database")
	}
}
