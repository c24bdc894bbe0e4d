package render

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"edsview/html"
)

var (
	imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(<?([^)\s>]+)>?(?:\s+"[^"]*")?\)`)

	// Link text may hold one level of brackets, left by a rewritten image.
	linkRe    = regexp.MustCompile(`\[((?:[^\[\]]|\[[^\]]*\])*)\]\(<?([^)\s>]+)>?(?:\s+"[^"]*")?\)`)
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
)

type inlineImage struct {
	src, alt string
}

// Node renders default content: the markup is sanitised, converted to
// Markdown with URLs made absolute, and its links numbered. Images are
// written through Image so they resolve like block images.
func (w *Writer) Node(n *html.Node) {
	if n == nil {
		return
	}
	md, err := w.markdown(n)
	if err != nil {
		w.r.log.Debug("markdown conversion failed, using plain text")
		w.Text(n.Text())
		return
	}

	for _, line := range strings.Split(strings.TrimSpace(md), "\n") {
		if strings.TrimSpace(line) == "" {
			w.Blank()
			continue
		}
		w.markdownLine(line)
	}
}

func (w *Writer) markdown(n *html.Node) (string, error) {
	clean := w.r.policy.Sanitize(n.OuterHTML())
	return w.r.conv.ConvertString(clean, converter.WithDomain(w.Site().SiteURL))
}

// markdownLine writes one Markdown line. Images become labels followed by
// their resolved URLs, links are numbered and headings go through Heading.
func (w *Writer) markdownLine(line string) {
	imageOnly := strings.TrimSpace(imageRe.ReplaceAllString(line, "")) == ""

	var images []inlineImage
	line = imageRe.ReplaceAllStringFunc(line, func(m string) string {
		sub := imageRe.FindStringSubmatch(m)
		img := inlineImage{src: sub[2], alt: strings.TrimSpace(sub[1])}
		images = append(images, img)
		return imageLabel(img.alt)
	})
	line = linkRe.ReplaceAllStringFunc(line, func(m string) string {
		sub := linkRe.FindStringSubmatch(m)
		text, href := strings.TrimSpace(sub[1]), sub[2]
		if text == "" {
			text = href
		}
		return w.r.style(linkStyle, text) + " " + linkMarker(w.addLink(href))
	})

	switch {
	case imageOnly:
	case headingRe.MatchString(line):
		sub := headingRe.FindStringSubmatch(line)
		w.Heading(len(sub[1]), sub[2])
	default:
		w.wrapMarked(line)
	}
	for _, img := range images {
		w.Image(img.src, img.alt)
	}
}

// wrapMarked wraps a line, keeping list and quote markers as a hanging
// indent.
func (w *Writer) wrapMarked(line string) {
	trimmed := strings.TrimLeft(line, " ")
	lead := line[:len(line)-len(trimmed)]
	marker := ""
	for _, m := range []string{"- ", "* ", "+ ", "> "} {
		if strings.HasPrefix(trimmed, m) {
			marker = m
			break
		}
	}
	if marker == "" {
		if i := strings.Index(trimmed, ". "); i > 0 && i <= 3 && isDigits(trimmed[:i]) {
			marker = trimmed[:i+2]
		}
	}

	body := strings.TrimPrefix(trimmed, marker)
	hang := strings.Repeat(" ", StringWidth(lead+marker))
	width := max(w.width()-len(hang), 10)
	for i, l := range WrapText(body, width) {
		if i == 0 {
			w.line(lead + marker + l)
			continue
		}
		w.line(hang + l)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
