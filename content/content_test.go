package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edsview/html"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>  Welcome  </title></head>
<body>
<div>
  <h1>Hello</h1>
  <p>Intro paragraph</p>
  <div class="hero dark wide">
    <div><div><picture><img src="/media/hero.png" alt="hero"></picture></div></div>
    <div><div><h2>Title</h2><p><a href="/about">About</a></p></div></div>
  </div>
  <div class="section-metadata">
    <div><div><em>Style</em></div><div>highlight</div></div>
    <div><div>Style</div><div> bold </div></div>
    <div><div>   </div><div>ignored</div></div>
    <div><div>lonely</div></div>
  </div>
</div>
<div></div>
<div>
  <div class="Cards">
    <div><p>no columns here</p></div>
  </div>
  <div><p>classless</p></div>
</div>
</body>
</html>`

func parse(t *testing.T, src string) *Page {
	t.Helper()
	page, err := ParseString(src, "https://x.com")
	require.NoError(t, err)
	return page
}

func TestParseDocument(t *testing.T) {
	page := parse(t, samplePage)

	assert.Equal(t, "Welcome", page.Title)
	assert.True(t, page.HasTitle())
	assert.Equal(t, "https://x.com", page.BaseURL)
	require.Len(t, page.Sections, 2, "empty section should be dropped")

	first := page.Sections[0]
	require.Len(t, first.Elements, 3)
	assert.Equal(t, KindDefault, first.Elements[0].Kind())
	assert.Equal(t, KindDefault, first.Elements[1].Kind())

	hero, ok := first.Elements[2].(*Block)
	require.True(t, ok)
	assert.Equal(t, "hero", hero.Name)
	assert.Equal(t, []string{"dark", "wide"}, hero.Variants)
	assert.True(t, hero.HasVariant("dark"))
	assert.False(t, hero.HasVariant("light"))
	require.Len(t, hero.Rows, 2)
	require.Len(t, hero.Rows[0].Columns, 1)

	url, ok := ExtractImageURL(hero.Rows[0].Columns[0].Node)
	assert.True(t, ok)
	assert.Equal(t, "/media/hero.png", url)
}

func TestSectionMetadata(t *testing.T) {
	page := parse(t, samplePage)

	meta := page.Sections[0].Metadata
	assert.Equal(t, map[string]string{"style": "highlight, bold"}, meta)
	assert.Equal(t, "highlight, bold", page.Sections[0].Style())
	assert.Empty(t, page.Sections[1].Style())
}

func TestMetadataDivIsNotAnElement(t *testing.T) {
	page := parse(t, `<html><body><div>
		<div class="section-metadata"><div><div>Style</div><div>dark</div></div></div>
	</div></body></html>`)

	assert.Empty(t, page.Sections, "section holding only metadata has no elements")
}

func TestOnlyFirstMetadataDivIsRead(t *testing.T) {
	page := parse(t, `<html><body><div>
		<p>text</p>
		<div class="section-metadata"><div><div>Style</div><div>dark</div></div></div>
		<div class="section-metadata"><div><div>Style</div><div>light</div></div><div><div>Id</div><div>x</div></div></div>
	</div></body></html>`)

	require.Len(t, page.Sections, 1)
	assert.Equal(t, map[string]string{"style": "dark"}, page.Sections[0].Metadata)
	assert.Len(t, page.Sections[0].Elements, 1)
}

func TestBlockNameLowercased(t *testing.T) {
	page := parse(t, samplePage)

	cards, ok := page.Sections[1].Elements[0].(*Block)
	require.True(t, ok)
	assert.Equal(t, "cards", cards.Name)
	assert.Empty(t, cards.Variants)
}

func TestRowFallback(t *testing.T) {
	page := parse(t, samplePage)

	cards := page.Sections[1].Elements[0].(*Block)
	require.Len(t, cards.Rows, 1)
	require.Len(t, cards.Rows[0].Columns, 1)

	col := cards.Rows[0].Columns[0].Node
	assert.True(t, col.Is("div"), "fallback column wraps the row div")
	assert.Equal(t, "no columns here", col.Text())
}

func TestClasslessDivIsDefaultContent(t *testing.T) {
	page := parse(t, samplePage)

	dc, ok := page.Sections[1].Elements[1].(*DefaultContent)
	require.True(t, ok)
	assert.Equal(t, "classless", dc.Node.Text())
}

func TestBlockWithoutRows(t *testing.T) {
	page := parse(t, `<html><body><div><div class="embed"><p>text</p></div></div></body></html>`)

	require.Len(t, page.Sections, 1)
	block := page.Sections[0].Elements[0].(*Block)
	assert.Equal(t, "embed", block.Name)
	assert.Empty(t, block.Rows)
}

func TestMissingTitle(t *testing.T) {
	page := parse(t, `<html><head><title>   </title></head><body></body></html>`)

	assert.False(t, page.HasTitle())
	assert.Empty(t, page.Sections)
}

func TestParseIsDeterministic(t *testing.T) {
	a := parse(t, samplePage)
	b := parse(t, samplePage)

	require.Len(t, b.Sections, len(a.Sections))
	for i := range a.Sections {
		assert.Equal(t, a.Sections[i].Metadata, b.Sections[i].Metadata)
		require.Len(t, b.Sections[i].Elements, len(a.Sections[i].Elements))
		for j := range a.Sections[i].Elements {
			assert.Equal(t, a.Sections[i].Elements[j].Kind(), b.Sections[i].Elements[j].Kind())
		}
	}
}

func TestExtractHelpers(t *testing.T) {
	doc, err := html.ParseString(`<div id="x">
		<a href="">empty</a>
		<a href="/one"> One </a>
		<a href="https://other.com/two">Two</a>
		<img src="  ">
	</div>`)
	require.NoError(t, err)
	n := doc.Root().First("#x")
	require.NotNil(t, n)

	links := ExtractLinks(n)
	require.Len(t, links, 3)
	assert.Equal(t, Link{Href: "/one", Text: "One"}, links[1])

	first, ok := ExtractFirstLink(n)
	require.True(t, ok)
	assert.Equal(t, "/one", first.Href)

	_, ok = ExtractImageURL(n)
	assert.False(t, ok, "blank src counts as missing")

	assert.Equal(t, "empty One Two", ExtractText(n))
}
