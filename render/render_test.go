package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edsview/content"
	"edsview/nav"
	"edsview/site"
)

var testSite = site.Config{SiteURL: "https://x.com"}

func parsePage(t *testing.T, body string) *content.Page {
	t.Helper()
	page, err := content.ParseString("<html><body>"+body+"</body></html>", testSite.SiteURL)
	require.NoError(t, err)
	return page
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected []string
	}{
		{"no wrap needed", "hello world", 20, []string{"hello world"}},
		{"simple wrap", "hello world foo bar", 11, []string{"hello world", "foo bar"}},
		{"multiple lines", "one two three four five six", 10, []string{"one two", "three four", "five six"}},
		{"preserves newlines", "first\n\nsecond", 20, []string{"first", "", "second"}},
		{"long word breaks", "supercalifragilisticexpialidocious", 10, []string{"supercalif", "ragilistic", "expialidoc", "ious"}},
		{"wide runes", "日本語テキスト", 6, []string{"日本語", "テキス", "ト"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WrapText(tt.text, tt.width))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hell...", Truncate("hello world", 7))
}

func TestHero(t *testing.T) {
	page := parsePage(t, `<div><div class="hero">
		<div>
			<div><picture><img src="/media/hero.png" alt="Hero"></picture></div>
			<div><h1>Big Title</h1><p><a href="/start">Get started</a></p><p>Subtitle here</p></div>
		</div>
	</div></div>`)

	out := New(testSite, Options{Width: 60}).Page(context.Background(), page)
	text := out.String()

	assert.Contains(t, text, "Big Title\n=========")
	assert.Contains(t, text, "Subtitle here")
	assert.Contains(t, text, "[image: Hero] https://x.com/media/hero.png")
	assert.Contains(t, text, "Get started [1]")
	assert.Equal(t, []string{"/start"}, out.Links)
}

func TestCards(t *testing.T) {
	page := parsePage(t, `<div><div class="cards">
		<div>
			<div><img src="./a.png"></div>
			<div><p><strong>First</strong></p><p>Description one</p><p><a href="/one">Read</a></p></div>
		</div>
		<div>
			<div><p>Only title</p></div>
		</div>
	</div></div>`)

	out := New(testSite, Options{}).Page(context.Background(), page)
	text := out.String()

	assert.Contains(t, text, "* First")
	assert.Contains(t, text, "  Description one")
	assert.Contains(t, text, "  [image] https://x.com/a.png")
	assert.Contains(t, text, "  Read [1]")
	assert.Contains(t, text, "* Only title")
	assert.Equal(t, []string{"/one"}, out.Links)
}

func TestContainmentDispatch(t *testing.T) {
	page := parsePage(t, `<div><div class="promo-cards dark">
		<div><div><p><strong>Card</strong></p></div></div>
	</div></div>`)

	text := New(testSite, Options{}).Page(context.Background(), page).String()
	assert.Contains(t, text, "* Card", "name containing card uses the cards handler")
}

func TestSkippedBlocks(t *testing.T) {
	for _, name := range SkipBlocks {
		t.Run(name, func(t *testing.T) {
			page := parsePage(t, `<div><div class="`+name+`"><div><div><p>hidden</p></div></div></div></div>`)
			out := New(testSite, Options{}).Page(context.Background(), page)
			assert.NotContains(t, out.String(), "hidden")
		})
	}
}

func TestGenericBlock(t *testing.T) {
	page := parsePage(t, `<div><div class="embed wide">
		<div><div><p>Inside embed</p></div></div>
	</div></div>`)

	text := New(testSite, Options{}).Page(context.Background(), page).String()
	assert.Contains(t, text, "Embed\n")
	assert.Contains(t, text, "Inside embed")
}

func TestColumns(t *testing.T) {
	page := parsePage(t, `<div><div class="columns">
		<div><div><p>Left</p></div><div><p>Right</p></div></div>
	</div></div>`)

	text := New(testSite, Options{}).Page(context.Background(), page).String()
	assert.Contains(t, text, "| Left")
	assert.Contains(t, text, "| Right")
}

func TestDefaultContentLinks(t *testing.T) {
	page := parsePage(t, `<div><p>Visit <a href="/about">About us</a> today</p><p>Mail <a href="mailto:a@b.com">us</a></p></div>`)

	out := New(testSite, Options{}).Page(context.Background(), page)
	text := out.String()

	assert.Contains(t, text, "About us [1]")
	assert.Contains(t, text, "us [2]")
	require.Len(t, out.Links, 2)
	assert.True(t, strings.HasSuffix(out.Links[0], "/about"), out.Links[0])
	assert.Equal(t, "mailto:a@b.com", out.Links[1])
}

func TestDefaultContentImages(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		links    []string
		expected []string
	}{
		{
			name:     "standalone image",
			body:     `<div><p><img src="/a.png" alt="Logo"></p></div>`,
			expected: []string{"[image: Logo] https://x.com/a.png"},
		},
		{
			name: "linked images",
			body: `<div><p><a href="/about"><picture><img src="./media_1.png" alt="Team"></picture></a></p>` +
				`<p><a href="/docs"><img src="/x.png" alt=""></a></p></div>`,
			links: []string{"https://x.com/about", "https://x.com/docs"},
			expected: []string{
				"[image: Team] [1]",
				"[image: Team] https://x.com/media_1.png",
				"[image] [2]",
				"[image] https://x.com/x.png",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New(testSite, Options{}).Page(context.Background(), parsePage(t, tt.body))
			text := out.String()

			assert.Equal(t, tt.links, out.Links)
			for _, want := range tt.expected {
				assert.Contains(t, text, want)
			}
			assert.NotContains(t, text, "](")
		})
	}
}

func TestDefaultContentHeadings(t *testing.T) {
	page := parsePage(t, `<div><h2>Hello there</h2><p>Body text</p></div>`)

	text := New(testSite, Options{}).Page(context.Background(), page).String()
	assert.Contains(t, text, "Hello there\n-----------")
	assert.Contains(t, text, "Body text")
	assert.NotContains(t, text, "##")
}

func TestDefaultContentIsSanitized(t *testing.T) {
	page := parsePage(t, `<div><p>Safe<script>alert(1)</script></p></div>`)

	text := New(testSite, Options{}).Page(context.Background(), page).String()
	assert.Contains(t, text, "Safe")
	assert.NotContains(t, text, "alert")
}

func TestSectionStyle(t *testing.T) {
	page := parsePage(t, `<div><p>Body</p><div class="section-metadata"><div><div>Style</div><div>highlight</div></div></div></div>`)

	text := New(testSite, Options{}).Page(context.Background(), page).String()
	assert.Contains(t, text, "-- highlight --")
}

type fakeLoader struct {
	page  *content.Page
	err   error
	paths []string
}

func (f *fakeLoader) FetchPage(ctx context.Context, cfg site.Config, path string) (*content.Page, error) {
	f.paths = append(f.paths, path)
	return f.page, f.err
}

const fragmentBlock = `<div><div class="fragment"><div><div><p><a href="https://x.com/fragments/promo">promo</a></p></div></div></div></div>`

func TestFragment(t *testing.T) {
	loader := &fakeLoader{page: parsePage(t, `<div><p>From the fragment</p></div>`)}
	r := New(testSite, Options{}, WithFragmentLoader(loader))

	text := r.Page(context.Background(), parsePage(t, fragmentBlock)).String()
	assert.Contains(t, text, "From the fragment")
	assert.Equal(t, []string{"fragments/promo"}, loader.paths)
}

func TestFragmentUnavailable(t *testing.T) {
	loader := &fakeLoader{err: errors.New("boom")}
	r := New(testSite, Options{}, WithFragmentLoader(loader))

	text := r.Page(context.Background(), parsePage(t, fragmentBlock)).String()
	assert.Contains(t, text, "Fragment unavailable")
}

func TestFragmentDepthLimit(t *testing.T) {
	loader := &fakeLoader{}
	loader.page = parsePage(t, fragmentBlock)
	r := New(testSite, Options{}, WithFragmentLoader(loader))

	text := r.Page(context.Background(), parsePage(t, fragmentBlock)).String()
	assert.Len(t, loader.paths, maxFragmentDepth)
	assert.Equal(t, 1, strings.Count(text, "Fragment unavailable"))
}

func TestNav(t *testing.T) {
	data := &nav.Data{
		Brand: &nav.Brand{Title: "Site", Href: "/"},
		Sections: []nav.Section{
			{Title: "Docs", Items: []nav.Item{{Title: "Intro", Href: "/docs/intro"}}},
			{Title: "Blog"},
		},
	}

	out := New(testSite, Options{}).Nav(data)
	text := out.String()

	assert.Contains(t, text, "Site [1]")
	assert.Contains(t, text, "Docs\n----")
	assert.Contains(t, text, "  Intro [2]")
	assert.Equal(t, []string{"/", "/docs/intro"}, out.Links)

	link, ok := out.Link(2)
	assert.True(t, ok)
	assert.Equal(t, "/docs/intro", link)
	_, ok = out.Link(3)
	assert.False(t, ok)
}

func TestEmptyNav(t *testing.T) {
	out := New(testSite, Options{}).Nav(&nav.Data{})
	assert.Contains(t, out.String(), "navigation is empty")
}

func TestRegistryLookup(t *testing.T) {
	var called []string
	reg := NewRegistry()
	reg.Skip("footer")
	reg.Register("hero", func(w *Writer, b *content.Block) { called = append(called, "exact:"+b.Name) })
	reg.RegisterContains("hero", func(w *Writer, b *content.Block) { called = append(called, "contains:"+b.Name) })

	_, ok := reg.Lookup("footer")
	assert.False(t, ok)
	_, ok = reg.Lookup("unknown")
	assert.False(t, ok, "no fallback registered")

	for _, name := range []string{"hero", "hero-big"} {
		h, ok := reg.Lookup(name)
		require.True(t, ok)
		h(nil, &content.Block{Name: name})
	}
	assert.Equal(t, []string{"exact:hero", "contains:hero-big"}, called)
}

func TestColorStyles(t *testing.T) {
	out := New(testSite, Options{Color: true}).Nav(&nav.Data{Brand: &nav.Brand{Title: "Site", Href: "/"}})
	assert.Contains(t, out.String(), "\033[4;36mSite\033[0m [1]")
	assert.Equal(t, "plain", Style{}.Apply("plain"))
}
