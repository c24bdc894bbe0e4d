package render

import (
	"strings"

	"edsview/content"
	"edsview/html"
	"edsview/logger"
	"edsview/site"
)

// Hero draws the first row of a hero block: heading, the first plain
// paragraph, the image and the call-to-action link.
func Hero(w *Writer, b *content.Block) {
	if len(b.Rows) == 0 {
		return
	}
	imageCol, textCol := splitColumns(b.Rows[0])

	if heading := textCol.First("h1, h2, h3"); heading != nil {
		w.Heading(1, heading.Text())
	}
	for _, p := range textCol.Find("p") {
		if p.First("a") != nil || p.First("picture") != nil {
			continue
		}
		if text := p.Text(); text != "" {
			w.Text(text)
			break
		}
	}
	if src, ok := content.ExtractImageURL(imageCol); ok {
		w.Image(src, imageAlt(imageCol))
	}
	if cta, ok := content.ExtractFirstLink(textCol); ok {
		w.Link(cta.Text, cta.Href)
	}
}

// Columns draws every column of every row as an indented group.
func Columns(w *Writer, b *content.Block) {
	for i, row := range b.Rows {
		if i > 0 {
			w.Blank()
		}
		for _, col := range row.Columns {
			w.Nested("| ", func(w *Writer) {
				renderChildren(w, col.Node)
			})
		}
	}
}

// Cards draws one card per row: title, description, image and link.
func Cards(w *Writer, b *content.Block) {
	for _, row := range b.Rows {
		imageCol, textCol := splitColumns(row)

		title := ""
		if strong := textCol.First("p strong"); strong != nil {
			title = strong.Text()
		} else if p := textCol.First("p"); p != nil {
			title = p.Text()
		}
		description := ""
		if ps := textCol.Find("p"); len(ps) > 1 {
			description = ps[1].Text()
		}

		link, hasLink := content.ExtractFirstLink(textCol)
		if !hasLink {
			link, hasLink = content.ExtractFirstLink(imageCol)
		}

		w.Text("* " + title)
		w.Nested("  ", func(w *Writer) {
			if description != "" {
				w.Text(description)
			}
			if src, ok := content.ExtractImageURL(imageCol); ok {
				w.Image(src, imageAlt(imageCol))
			}
			if hasLink {
				w.Link(link.Text, link.Href)
			}
		})
	}
}

// Fragment loads the page referenced by the block's first link and draws
// its sections inline.
func Fragment(w *Writer, b *content.Block) {
	href, ok := fragmentHref(b)
	if !ok {
		return
	}
	if w.r.fragments == nil || w.depth >= maxFragmentDepth {
		w.Note("Fragment unavailable")
		return
	}

	path := site.FragmentPath(href)
	page, err := w.r.fragments.FetchPage(w.Context(), w.Site(), path)
	if err != nil {
		w.r.log.Warn("fragment load failed", logger.String("path", path), logger.Error(err))
		w.Note("Fragment unavailable")
		return
	}

	nested := *w
	nested.depth++
	nested.Page(page)
}

// Generic draws the block name followed by every column's children.
func Generic(w *Writer, b *content.Block) {
	if b.Name != "" {
		w.Note(Capitalize(b.Name))
	}
	for i, row := range b.Rows {
		if i > 0 {
			w.Blank()
		}
		for _, col := range row.Columns {
			renderChildren(w, col.Node)
		}
	}
}

// splitColumns returns the image column (the first) and the text column
// (the second, or the first when there is only one).
func splitColumns(row content.Row) (image, text *html.Node) {
	image = row.Columns[0].Node
	text = image
	if len(row.Columns) > 1 {
		text = row.Columns[1].Node
	}
	return image, text
}

func renderChildren(w *Writer, n *html.Node) {
	children := n.Children()
	if len(children) == 0 {
		if text := n.Text(); text != "" {
			w.Text(text)
		}
		return
	}
	for _, child := range children {
		w.Node(child)
	}
}

func fragmentHref(b *content.Block) (string, bool) {
	for _, row := range b.Rows {
		for _, col := range row.Columns {
			if link, ok := content.ExtractFirstLink(col.Node); ok {
				return link.Href, true
			}
		}
	}
	return "", false
}

func imageAlt(n *html.Node) string {
	img := n.First("img")
	if img == nil {
		return ""
	}
	alt, _ := img.Attr("alt")
	return strings.TrimSpace(alt)
}
