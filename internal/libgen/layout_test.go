package libgen

import (
	"strings"
	"testing"
)

func TestBuiltinLayoutsCompile(t *testing.T) {
	names := LayoutNames()
	if len(names) != 4 {
		t.Fatalf("expected 4 built-in layouts, got %v", names)
	}
	for _, name := range names {
		l, _ := LookupLayout(name)
		if l.Name != name {
			t.Errorf("layout %q reports name %q", name, l.Name)
		}
		if err := l.Validate(); err != nil {
			t.Errorf("layout %q: %v", name, err)
		}
	}
}

func TestLayoutValidateRejectsBadExpressions(t *testing.T) {
	base, _ := LookupLayout(LayoutFiction)

	tests := []struct {
		name   string
		mutate func(*Layout)
		want   string
	}{
		{"missing rows", func(l *Layout) { l.Rows = "" }, "rows expression is required"},
		{"missing title", func(l *Layout) { l.Title = "" }, "title expression is required"},
		{"broken xpath", func(l *Layout) { l.Mirrors = "./td[6//a" }, "mirrors expression"},
		{"broken cover", func(l *Layout) { l.Cover = "(" }, "cover pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.mutate(&l)
			err := l.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestCustomLayoutWithoutOptionalColumns(t *testing.T) {
	l := Layout{Name: "minimal", Rows: "//tr", Title: "./td/a"}
	p, err := NewParser(l, "", nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	results, err := p.ParseHTML([]byte(`<table><tr><td><a href="x/y/ID1">Only Title</a></td></tr></table>`))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if results.Total != 1 {
		t.Fatalf("expected one book, got %+v", results)
	}
	b := results.Books[0]
	if b.Title != "Only Title" || b.Author() != UnknownAuthor || b.ContentID != "ID1" || len(b.Mirrors) != 0 {
		t.Fatalf("unexpected book %+v", b)
	}
}
