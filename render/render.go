// Package render draws pages and navigation as wrapped terminal text.
//
// Every link in the output is numbered so an interactive front end can
// follow it by number.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"edsview/content"
	"edsview/logger"
	"edsview/nav"
	"edsview/site"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// maxFragmentDepth bounds fragment-inside-fragment expansion.
const maxFragmentDepth = 3

// FragmentLoader fetches the page a fragment block points at.
type FragmentLoader interface {
	FetchPage(ctx context.Context, cfg site.Config, path string) (*content.Page, error)
}

// Options configures output formatting.
type Options struct {
	Width int
	Color bool
}

// Renderer turns the content model into terminal text.
type Renderer struct {
	cfg       site.Config
	opts      Options
	registry  *Registry
	fragments FragmentLoader
	log       logger.Logger

	policy *bluemonday.Policy
	conv   *converter.Converter
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithRegistry replaces the block handler registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Renderer) { r.registry = reg }
}

// WithFragmentLoader enables inline rendering of fragment blocks.
func WithFragmentLoader(l FragmentLoader) Option {
	return func(r *Renderer) { r.fragments = l }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New creates a Renderer for the given site.
func New(cfg site.Config, opts Options, options ...Option) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	r := &Renderer{
		cfg:      cfg,
		opts:     opts,
		registry: DefaultRegistry(),
		log:      logger.NewNop(),
		policy:   bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Registry returns the block handler registry in use.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Output is rendered text together with the links it numbers.
type Output struct {
	Lines []string
	// Links holds the href of link [n] at index n-1.
	Links []string
}

// String joins the output lines.
func (o *Output) String() string {
	if len(o.Lines) == 0 {
		return ""
	}
	return strings.Join(o.Lines, "\n") + "\n"
}

// Link returns the href of the 1-based link number n.
func (o *Output) Link(n int) (string, bool) {
	if n < 1 || n > len(o.Links) {
		return "", false
	}
	return o.Links[n-1], true
}

// Page renders a full page.
func (r *Renderer) Page(ctx context.Context, page *content.Page) *Output {
	w := r.newWriter(ctx)
	if page.HasTitle() {
		w.Heading(1, page.Title)
		w.Blank()
	}
	w.Page(page)
	return w.out
}

// Nav renders the navigation menu.
func (r *Renderer) Nav(data *nav.Data) *Output {
	w := r.newWriter(context.Background())
	if data.Brand != nil {
		w.Link(data.Brand.Title, data.Brand.Href)
		w.Blank()
	}
	for _, s := range data.Sections {
		w.Heading(2, s.Title)
		w.Nested("  ", func(w *Writer) {
			for _, item := range s.Items {
				w.Link(item.Title, item.Href)
			}
		})
	}
	if len(w.out.Lines) == 0 {
		w.Note("(navigation is empty)")
	}
	return w.out
}

// Message renders a standalone status line, e.g. a load error.
func (r *Renderer) Message(text string, isError bool) string {
	if isError {
		return r.style(errorStyle, text)
	}
	return r.style(noteStyle, text)
}

func (r *Renderer) newWriter(ctx context.Context) *Writer {
	return &Writer{r: r, ctx: ctx, out: &Output{}}
}

func (r *Renderer) style(s Style, text string) string {
	if !r.opts.Color {
		return text
	}
	return s.Apply(text)
}

// Writer accumulates rendered lines. Block handlers draw through it.
type Writer struct {
	r      *Renderer
	ctx    context.Context
	out    *Output
	indent string
	depth  int
}

// Context returns the context of the render call.
func (w *Writer) Context() context.Context {
	return w.ctx
}

// Site returns the site configuration.
func (w *Writer) Site() site.Config {
	return w.r.cfg
}

func (w *Writer) width() int {
	return max(w.r.opts.Width-StringWidth(w.indent), 20)
}

func (w *Writer) line(s string) {
	w.out.Lines = append(w.out.Lines, w.indent+s)
}

// Blank writes an empty line, collapsing runs of them.
func (w *Writer) Blank() {
	if n := len(w.out.Lines); n == 0 || strings.TrimSpace(w.out.Lines[n-1]) == "" {
		return
	}
	w.out.Lines = append(w.out.Lines, "")
}

// Heading writes a heading. Level 1 and 2 headings are underlined.
func (w *Writer) Heading(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, l := range WrapText(text, w.width()) {
		w.line(w.r.style(headingStyle, l))
	}
	switch level {
	case 1:
		w.line(strings.Repeat("=", min(StringWidth(text), w.width())))
	case 2:
		w.line(strings.Repeat("-", min(StringWidth(text), w.width())))
	}
}

// Text writes a wrapped paragraph.
func (w *Writer) Text(text string) {
	for _, l := range WrapText(strings.TrimSpace(text), w.width()) {
		w.line(l)
	}
}

// Note writes dimmed auxiliary text.
func (w *Writer) Note(text string) {
	for _, l := range WrapText(text, w.width()) {
		w.line(w.r.style(noteStyle, l))
	}
}

// Image writes an image reference resolved against the site.
func (w *Writer) Image(src, alt string) {
	u, ok := w.Site().ResolveURL(src)
	if !ok {
		return
	}
	w.Note(imageLabel(alt) + " " + u)
}

func imageLabel(alt string) string {
	if alt = strings.TrimSpace(alt); alt != "" {
		return "[image: " + alt + "]"
	}
	return "[image]"
}

// Link writes a numbered link on its own line.
func (w *Writer) Link(text, href string) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = href
	}
	n := w.addLink(href)
	w.Text(fmt.Sprintf("%s %s", w.r.style(linkStyle, text), linkMarker(n)))
}

func (w *Writer) addLink(href string) int {
	w.out.Links = append(w.out.Links, href)
	return len(w.out.Links)
}

func linkMarker(n int) string {
	return fmt.Sprintf("[%d]", n)
}

// Nested runs fn with every line prefixed by prefix.
func (w *Writer) Nested(prefix string, fn func(*Writer)) {
	nested := *w
	nested.indent = w.indent + prefix
	fn(&nested)
}

// Page writes the sections of page.
func (w *Writer) Page(page *content.Page) {
	for i, s := range page.Sections {
		if i > 0 {
			w.Blank()
		}
		w.Section(s)
	}
}

// Section writes one section, announcing its style when it has one.
func (w *Writer) Section(s content.Section) {
	if style := s.Style(); style != "" {
		w.Note("-- " + style + " --")
	}
	for _, e := range s.Elements {
		w.Element(e)
	}
}

// Element dispatches on the element kind.
func (w *Writer) Element(e content.Element) {
	switch e := e.(type) {
	case *content.Block:
		w.Block(e)
	case *content.DefaultContent:
		w.Node(e.Node)
	}
}

// Block renders b with the handler registered for its name.
func (w *Writer) Block(b *content.Block) {
	h, ok := w.r.registry.Lookup(b.Name)
	if !ok {
		return
	}
	h(w, b)
	w.Blank()
}
