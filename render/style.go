package render

import (
	"fmt"
	"strings"
)

// Style is a set of ANSI text attributes.
type Style struct {
	Bold      bool
	Dim       bool
	Underline bool
	FgColor   int // ANSI foreground color code (0 = default, 36 = cyan, etc.)
}

var (
	headingStyle = Style{Bold: true}
	linkStyle    = Style{Underline: true, FgColor: 36}
	noteStyle    = Style{Dim: true}
	errorStyle   = Style{Bold: true, FgColor: 31}
)

func (s Style) sequence() string {
	var codes []string
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	if s.FgColor > 0 {
		codes = append(codes, fmt.Sprintf("%d", s.FgColor))
	}
	if len(codes) == 0 {
		return ""
	}
	return fmt.Sprintf("\033[%sm", strings.Join(codes, ";"))
}

// Apply wraps text in the style's escape sequences.
func (s Style) Apply(text string) string {
	seq := s.sequence()
	if seq == "" || text == "" {
		return text
	}
	return seq + text + "\033[0m"
}
