package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of a string in terminal cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// WrapText wraps text to fit within a given width in terminal cells.
// Newlines start a new paragraph; blank paragraphs are kept as empty lines.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineWidth := 0
		for _, word := range words {
			wordWidth := runewidth.StringWidth(word)
			switch {
			case lineWidth > 0 && lineWidth+1+wordWidth <= width:
				line.WriteByte(' ')
				line.WriteString(word)
				lineWidth += 1 + wordWidth
				continue
			case lineWidth > 0:
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}

			if wordWidth > width {
				lines = append(lines, breakWord(word, width)...)
				continue
			}
			line.WriteString(word)
			lineWidth = wordWidth
		}
		if lineWidth > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}

// breakWord splits a word wider than maxWidth into chunks that fit.
// A single rune wider than maxWidth gets a chunk of its own.
func breakWord(word string, maxWidth int) []string {
	var chunks []string
	var chunk strings.Builder
	chunkWidth := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if chunkWidth > 0 && chunkWidth+w > maxWidth {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			chunkWidth = 0
		}
		chunk.WriteRune(r)
		chunkWidth += w
	}
	if chunk.Len() > 0 {
		chunks = append(chunks, chunk.String())
	}
	return chunks
}

// Truncate shortens s to width cells, ending with "..." when cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
