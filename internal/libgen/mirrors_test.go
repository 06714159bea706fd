package libgen

import "testing"

func TestSelectSite(t *testing.T) {
	tests := []struct {
		override string
		want     Site
	}{
		{"", DefaultSites[0]},
		{"  ", DefaultSites[0]},
		{"libgen.is", Site{Host: "libgen.is", Layout: LayoutFiction}},
		{"LIBGEN.IS", DefaultSites[1]},
		{"http://93.174.95.27/", Site{Host: "93.174.95.27", Layout: LayoutFiction}},
		{"libgen.example", Site{Host: "libgen.example", Layout: LayoutFiction}},
	}
	for _, tt := range tests {
		if got := SelectSite(tt.override); got != tt.want {
			t.Errorf("SelectSite(%q) = %+v, want %+v", tt.override, got, tt.want)
		}
	}
}

func TestSiteBaseURL(t *testing.T) {
	s := Site{Host: "libgen.rs"}
	if got := s.BaseURL(""); got != "http://libgen.rs/fiction/" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := s.BaseURL("https"); got != "https://libgen.rs/fiction/" {
		t.Errorf("BaseURL(https) = %q", got)
	}
}

func TestDefaultSitesUseKnownLayouts(t *testing.T) {
	for _, s := range DefaultSites {
		if _, ok := LookupLayout(s.Layout); !ok {
			t.Errorf("site %s uses unknown layout %q", s.Host, s.Layout)
		}
	}
}
