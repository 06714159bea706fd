package libgen

import (
	"fmt"
	"strings"
)

// DefaultScheme is used when no scheme is configured
const DefaultScheme = "http"

// Site is a catalog host together with the markup layout it serves
type Site struct {
	Host   string
	Layout string
}

// DefaultSites lists the known catalog mirrors in order of preference.
// libgen.lc is left out, it still serves the old-style search page.
var DefaultSites = []Site{
	{Host: "libgen.rs", Layout: LayoutFiction},
	{Host: "libgen.is", Layout: LayoutFiction},
	{Host: "gen.lib.rus.ec", Layout: LayoutFiction},
	{Host: "93.174.95.27", Layout: LayoutFiction},
}

// SelectSite returns the site for an explicit host override, or the first
// known mirror when override is empty. Unknown hosts get the default layout.
func SelectSite(override string) Site {
	override = strings.TrimSpace(override)
	if override == "" {
		return DefaultSites[0]
	}

	host := strings.TrimSuffix(override, "/")
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	for _, s := range DefaultSites {
		if strings.EqualFold(s.Host, host) {
			return s
		}
	}
	return Site{Host: host, Layout: LayoutFiction}
}

// BaseURL returns the fiction section root of the site, always ending in a slash
func (s Site) BaseURL(scheme string) string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return fmt.Sprintf("%s://%s/fiction/", scheme, s.Host)
}
