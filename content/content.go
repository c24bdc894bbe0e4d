// Package content turns EDS plain-HTML documents into a structured page
// model: sections, named blocks with rows and columns, and default content
// passed through as raw markup.
package content

import (
	"strings"

	"edsview/html"
)

// Page is the parsed form of one plain-HTML document.
type Page struct {
	Title    string    `json:"title,omitempty"`
	BaseURL  string    `json:"baseUrl,omitempty"`
	Sections []Section `json:"sections"`
}

// HasTitle reports whether the document carried a non-blank <title>.
func (p *Page) HasTitle() bool {
	return p.Title != ""
}

// Section is one top-level <div> of the document body.
type Section struct {
	Metadata map[string]string `json:"metadata,omitempty"`
	Elements []Element         `json:"elements"`
}

// Style returns the section's "style" metadata value, or "".
func (s *Section) Style() string {
	return s.Metadata["style"]
}

// Kind identifies the concrete type of an Element.
type Kind int

const (
	KindDefault Kind = iota
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	default:
		return "default"
	}
}

// Element is a section child: either a *Block or a *DefaultContent.
type Element interface {
	Kind() Kind
	element()
}

// Block is a section child <div> identified by its CSS classes.
type Block struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants,omitempty"`
	Rows     []Row    `json:"rows"`
}

func (*Block) Kind() Kind { return KindBlock }
func (*Block) element()   {}

// HasVariant reports whether the block carries the given variant class.
func (b *Block) HasVariant(v string) bool {
	for _, have := range b.Variants {
		if have == v {
			return true
		}
	}
	return false
}

// DefaultContent is markup outside any named block, passed through as is.
type DefaultContent struct {
	Node *html.Node `json:"-"`
}

func (*DefaultContent) Kind() Kind { return KindDefault }
func (*DefaultContent) element()   {}

// Row is one direct <div> child of a block. Columns is never empty.
type Row struct {
	Columns []Column `json:"columns"`
}

// Column wraps one cell of a block row.
type Column struct {
	Node *html.Node `json:"-"`
}

// Link is an anchor extracted from a node.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

const metadataClass = "section-metadata"

// ParseString parses plain-HTML text into a Page.
func ParseString(text, baseURL string) (*Page, error) {
	doc, err := html.ParseString(text)
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, baseURL), nil
}

// ParseDocument builds a Page from a parsed document. It never fails:
// structure it does not recognise degrades to default content or is dropped.
func ParseDocument(doc *html.Document, baseURL string) *Page {
	page := &Page{
		Title:   doc.Title(),
		BaseURL: baseURL,
	}

	body := doc.Body()
	if body == nil {
		return page
	}

	for _, div := range body.ChildrenByTag("div") {
		section := ParseSection(div)
		if len(section.Elements) == 0 {
			continue
		}
		page.Sections = append(page.Sections, section)
	}
	return page
}

// ParseSection parses one top-level section <div>. Metadata comes from the
// first direct section-metadata child; every section-metadata child is left
// out of Elements.
func ParseSection(div *html.Node) Section {
	section := Section{Metadata: map[string]string{}}

	seenMetadata := false
	for _, child := range div.Children() {
		if child.Is("div") && child.HasClass(metadataClass) {
			if !seenMetadata {
				section.Metadata = ExtractSectionMetadata(child)
				seenMetadata = true
			}
			continue
		}
		section.Elements = append(section.Elements, parseElement(child))
	}
	return section
}

func parseElement(n *html.Node) Element {
	if !n.Is("div") {
		return &DefaultContent{Node: n}
	}
	classes := n.Classes()
	if len(classes) == 0 {
		return &DefaultContent{Node: n}
	}
	return &Block{
		Name:     strings.ToLower(classes[0]),
		Variants: classes[1:],
		Rows:     ParseBlockRows(n),
	}
}

// ExtractSectionMetadata reads the key/value rows of a section-metadata div.
// Rows with fewer than two cells or a blank key are ignored. A repeated key
// has its values joined with ", ".
func ExtractSectionMetadata(div *html.Node) map[string]string {
	meta := map[string]string{}
	for _, row := range div.ChildrenByTag("div") {
		cells := row.ChildrenByTag("div")
		if len(cells) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cells[0].Text()))
		if key == "" {
			continue
		}
		value := strings.TrimSpace(cells[1].Text())
		addMetadata(meta, key, value)
	}
	return meta
}

func addMetadata(meta map[string]string, key, value string) {
	if prev, ok := meta[key]; ok {
		meta[key] = prev + ", " + value
		return
	}
	meta[key] = value
}

// ParseBlockRows returns the rows of a block div. A row without <div>
// children becomes a single column wrapping the row itself.
func ParseBlockRows(block *html.Node) []Row {
	var rows []Row
	for _, rowDiv := range block.ChildrenByTag("div") {
		var row Row
		for _, col := range rowDiv.ChildrenByTag("div") {
			row.Columns = append(row.Columns, Column{Node: col})
		}
		if len(row.Columns) == 0 {
			row.Columns = []Column{{Node: rowDiv}}
		}
		rows = append(rows, row)
	}
	return rows
}

// ExtractImageURL returns the src of the first <img> under n. The second
// result is false when there is no image or its src is blank.
func ExtractImageURL(n *html.Node) (string, bool) {
	img := n.First("img")
	if img == nil {
		return "", false
	}
	src, _ := img.Attr("src")
	if strings.TrimSpace(src) == "" {
		return "", false
	}
	return src, true
}

// ExtractText returns the trimmed text of n.
func ExtractText(n *html.Node) string {
	return n.Text()
}

// ExtractLinks returns every <a> under n in document order.
func ExtractLinks(n *html.Node) []Link {
	var links []Link
	for _, a := range n.Find("a") {
		href, _ := a.Attr("href")
		links = append(links, Link{Href: href, Text: a.Text()})
	}
	return links
}

// ExtractFirstLink returns the first <a> under n with a non-blank href.
func ExtractFirstLink(n *html.Node) (Link, bool) {
	for _, a := range n.Find("a") {
		href, _ := a.Attr("href")
		if strings.TrimSpace(href) == "" {
			continue
		}
		return Link{Href: href, Text: a.Text()}, true
	}
	return Link{}, false
}
