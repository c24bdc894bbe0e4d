// Package nav parses the site navigation document (nav.plain.html).
//
// The document body holds up to three top-level divs: brand, sections and
// tools. Only the first two feed the model.
package nav

import (
	"strings"

	"edsview/html"
)

// Data is the parsed navigation document.
type Data struct {
	Brand    *Brand    `json:"brand,omitempty"`
	Sections []Section `json:"sections"`
}

// Brand is the site title link.
type Brand struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Section is a top-level navigation entry with its child links.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Item is a single navigation link.
type Item struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// ParseString parses nav HTML text.
func ParseString(text string) (*Data, error) {
	doc, err := html.ParseString(text)
	if err != nil {
		return nil, err
	}
	return Parse(doc), nil
}

// Parse builds navigation data from a parsed document. Missing structure
// yields an empty or partial result.
func Parse(doc *html.Document) *Data {
	data := &Data{}

	body := doc.Body()
	if body == nil {
		return data
	}
	divs := body.ChildrenByTag("div")
	if len(divs) == 0 {
		return data
	}

	data.Brand = parseBrand(divs[0])
	if len(divs) > 1 {
		data.Sections = parseSections(divs[1])
	}
	return data
}

func parseBrand(div *html.Node) *Brand {
	a := div.First("a")
	if a == nil {
		return nil
	}
	title := a.Text()
	if title == "" {
		return nil
	}
	return &Brand{
		Title: title,
		Href:  a.AttrOr("href", "/"),
	}
}

func parseSections(div *html.Node) []Section {
	ul := div.First("ul")
	if ul == nil {
		return nil
	}

	var sections []Section
	for _, li := range ul.ChildrenByTag("li") {
		title := strings.TrimSpace(li.OwnText())
		if title == "" {
			continue
		}
		sections = append(sections, Section{
			Title: title,
			Items: parseItems(li),
		})
	}
	return sections
}

func parseItems(li *html.Node) []Item {
	ul := li.First("ul")
	if ul == nil {
		return nil
	}

	var items []Item
	for _, child := range ul.ChildrenByTag("li") {
		a := child.First("a")
		if a == nil {
			continue
		}
		title := a.Text()
		href, _ := a.Attr("href")
		if title == "" || strings.TrimSpace(href) == "" {
			continue
		}
		items = append(items, Item{Title: title, Href: href})
	}
	return items
}
