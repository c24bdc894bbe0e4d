// Package site holds the EDS site configuration and the URL arithmetic
// derived from it.
package site

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSiteURL is the public EDS boilerplate site.
const DefaultSiteURL = "https://main--aem-boilerplate--adobe.aem.live"

// Config identifies the EDS site being browsed. It is a value type; copies
// are independent.
type Config struct {
	SiteURL  string `json:"siteUrl"`
	HomePath string `json:"homePath"`
}

// Default returns the configuration for the boilerplate demo site.
func Default() Config {
	return Config{SiteURL: DefaultSiteURL}
}

// Validate checks that SiteURL is an absolute http(s) URL.
func (c Config) Validate() error {
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return fmt.Errorf("invalid site url %q: %w", c.SiteURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid site url %q: scheme must be http or https", c.SiteURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid site url %q: missing host", c.SiteURL)
	}
	return nil
}

// Host returns SiteURL without its scheme, cut at the first '/'.
func (c Config) Host() string {
	return cutHost(stripScheme(c.SiteURL))
}

// PageURL returns the public URL of a page path.
func (c Config) PageURL(path string) string {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return c.SiteURL
	}
	return c.SiteURL + "/" + path
}

// PlainHTMLURL returns the plain-HTML export URL of a page path.
func (c Config) PlainHTMLURL(path string) string {
	u := c.PageURL(path)
	switch {
	case u == c.SiteURL:
		return u + "/index.plain.html"
	case strings.HasSuffix(u, "/"):
		return u + "index.plain.html"
	default:
		return u + ".plain.html"
	}
}

// NavURL returns the plain-HTML URL of the navigation document.
func (c Config) NavURL() string {
	return c.SiteURL + "/nav.plain.html"
}

// ResolveURL makes an asset reference absolute against SiteURL. Absolute
// http(s) URLs pass through. An empty reference resolves to nothing.
func (c Config) ResolveURL(ref string) (string, bool) {
	switch {
	case ref == "":
		return "", false
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref, true
	case strings.HasPrefix(ref, "./"):
		return c.SiteURL + "/" + strings.TrimPrefix(ref, "./"), true
	case strings.HasPrefix(ref, "/"):
		return c.SiteURL + ref, true
	default:
		return c.SiteURL + "/" + ref, true
	}
}

// IsHomePath reports whether a normalised path names the home page.
func (c Config) IsHomePath(path string) bool {
	return path == "" || path == "index" || path == c.HomePath
}

// NormalizePath trims surrounding slashes and a .html suffix. The empty
// path becomes "index".
func NormalizePath(path string) string {
	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".html")
	if path == "" {
		return "index"
	}
	return path
}

// FragmentPath turns a fragment reference into a page path: absolute URLs
// keep only the part after the host, leading slashes are dropped, anything
// else is returned unchanged.
func FragmentPath(href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		rest := stripScheme(href)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return rest[i+1:]
		}
		return ""
	case strings.HasPrefix(href, "/"):
		return strings.TrimLeft(href, "/")
	default:
		return href
	}
}

func stripScheme(u string) string {
	u = strings.TrimPrefix(u, "https://")
	return strings.TrimPrefix(u, "http://")
}

func cutHost(u string) string {
	if i := strings.IndexByte(u, '/'); i >= 0 {
		return u[:i]
	}
	return u
}
