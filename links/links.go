// Package links classifies URLs selected on a rendered page.
package links

import (
	"strings"

	"edsview/site"
)

// Kind is the outcome of classifying a link.
type Kind int

const (
	// Internal links navigate within the site.
	Internal Kind = iota
	// Anchor links point into the current page.
	Anchor
	// SpecialProtocol links (mailto:, tel:, sms:) go to the platform handler.
	SpecialProtocol
	// External links open in the system browser.
	External
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal"
	case Anchor:
		return "anchor"
	case SpecialProtocol:
		return "special"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Result represents a classified link.
type Result struct {
	Kind Kind
	Path string // Site-relative page path (Internal only)
	Home bool   // Whether Path names the home page (Internal only)
}

// SpecialProtocols are the schemes handed to the platform URL opener.
var SpecialProtocols = []string{"mailto:", "tel:", "sms:"}

// Classify decides what selecting rawURL should do. It is pure.
func Classify(rawURL string, cfg site.Config) Result {
	switch {
	case IsAnchor(rawURL):
		return Result{Kind: Anchor}
	case IsSpecialProtocol(rawURL):
		return Result{Kind: SpecialProtocol}
	case !IsInternal(rawURL, cfg):
		return Result{Kind: External}
	}

	path := ExtractPath(rawURL)
	return Result{
		Kind: Internal,
		Path: path,
		Home: cfg.IsHomePath(path),
	}
}

// IsAnchor reports whether rawURL is an in-page fragment reference.
func IsAnchor(rawURL string) bool {
	return strings.HasPrefix(rawURL, "#")
}

// IsSpecialProtocol reports whether rawURL uses one of SpecialProtocols.
func IsSpecialProtocol(rawURL string) bool {
	for _, p := range SpecialProtocols {
		if strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	return false
}

// IsInternal reports whether rawURL stays on the configured site. Blank and
// relative URLs are internal; absolute URLs are internal when their host
// equals the site host exactly.
func IsInternal(rawURL string, cfg site.Config) bool {
	if strings.TrimSpace(rawURL) == "" || !isAbsolute(rawURL) {
		return true
	}
	host := extractHost(rawURL)
	if host == "" {
		return true
	}
	return host == cfg.Host()
}

// ExtractPath returns the site-relative path of an internal URL. Relative
// URLs only lose their leading slashes. Absolute URLs lose scheme and host,
// then a trailing .html and trailing slashes.
func ExtractPath(rawURL string) string {
	if !isAbsolute(rawURL) {
		return strings.TrimLeft(rawURL, "/")
	}

	rest := stripScheme(rawURL)
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return ""
	}
	path := rest[i+1:]
	path = strings.TrimSuffix(path, ".html")
	return strings.TrimRight(path, "/")
}

func isAbsolute(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

func stripScheme(rawURL string) string {
	rawURL = strings.TrimPrefix(rawURL, "https://")
	return strings.TrimPrefix(rawURL, "http://")
}

func extractHost(rawURL string) string {
	rest := stripScheme(rawURL)
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		return rest[:i]
	}
	return rest
}
