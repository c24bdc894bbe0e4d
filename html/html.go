// Package html wraps golang.org/x/net/html trees with the lookups the EDS
// parsers rely on: tag and attribute access, element children, direct text
// and CSS descendant queries.
package html

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse parses an HTML document. The tokenizer is lenient, so malformed
// markup still yields a tree with html, head and body elements.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses HTML from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return wrap(d.root)
}

// Title returns the trimmed text of the first <title> element, or "".
func (d *Document) Title() string {
	t := d.Root().First("title")
	if t == nil {
		return ""
	}
	return t.Text()
}

// Body returns the <body> element, or nil if the tree has none.
func (d *Document) Body() *Node {
	return d.Root().First("body")
}

// Node is an element or text node in a parsed document.
type Node struct {
	n *html.Node
}

func wrap(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n}
}

// Tag returns the lower-case tag name of an element, or "" for other nodes.
func (n *Node) Tag() string {
	if n.n.Type != html.ElementNode {
		return ""
	}
	return n.n.Data
}

// Is reports whether n is an element with the given tag name.
func (n *Node) Is(tag string) bool {
	return n.Tag() == tag
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute, or def when it is missing or blank.
func (n *Node) AttrOr(key, def string) string {
	if v, ok := n.Attr(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Classes returns the element's CSS classes in document order, without
// duplicates.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	classes := make([]string, 0, len(fields))
	for _, c := range fields {
		if seen[c] {
			continue
		}
		seen[c] = true
		classes = append(classes, c)
	}
	return classes
}

// HasClass reports whether the element carries the given CSS class.
func (n *Node) HasClass(class string) bool {
	v, _ := n.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Children returns the element children of n in document order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Node{n: c})
		}
	}
	return out
}

// ChildrenByTag returns the element children of n with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, &Node{n: c})
		}
	}
	return out
}

// OwnText returns the text of n's direct text-node children only, each
// whitespace-normalised and joined with a single space. Text inside nested
// elements is ignored.
func (n *Node) OwnText() string {
	var parts []string
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		if t := normalizeSpace(c.Data); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Text returns all descendant text, whitespace-normalised and trimmed.
func (n *Node) Text() string {
	return normalizeSpace(n.selection().Text())
}

// OuterHTML renders n and its subtree back to markup.
func (n *Node) OuterHTML() string {
	s, err := goquery.OuterHtml(n.selection())
	if err != nil {
		return ""
	}
	return s
}

// Find returns every descendant of n matching the CSS selector, in document
// order. An invalid selector matches nothing.
func (n *Node) Find(selector string) []*Node {
	sel, ok := compile(selector)
	if !ok {
		return nil
	}
	matches := cascadia.QueryAll(n.n, sel)
	out := make([]*Node, 0, len(matches))
	for _, m := range matches {
		out = append(out, &Node{n: m})
	}
	return out
}

// First returns the first descendant of n matching the CSS selector, or nil.
func (n *Node) First(selector string) *Node {
	sel, ok := compile(selector)
	if !ok {
		return nil
	}
	return wrap(cascadia.Query(n.n, sel))
}

func (n *Node) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(n.n).Selection
}

type compiled struct {
	sel cascadia.SelectorGroup
	ok  bool
}

// selectors caches compiled selectors; the parsers reuse a handful of them
// for every document.
var selectors sync.Map // string -> compiled

func compile(selector string) (cascadia.SelectorGroup, bool) {
	if v, ok := selectors.Load(selector); ok {
		c := v.(compiled)
		return c.sel, c.ok
	}
	sel, err := cascadia.ParseGroup(selector)
	c := compiled{sel: sel, ok: err == nil}
	selectors.Store(selector, c)
	return c.sel, c.ok
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
