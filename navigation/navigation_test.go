package navigation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edsview/links"
	"edsview/site"
)

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

func newNavigator() (*Navigator, *recordingOpener) {
	opener := &recordingOpener{}
	cfg := site.Config{SiteURL: "https://x.com"}
	return NewNavigator(NewStack(), cfg, opener, nil), opener
}

func TestStack(t *testing.T) {
	s := NewStack()
	assert.Equal(t, Home{}, s.Top())
	assert.False(t, s.Pop(), "root cannot be popped")

	s.Push(PageDetail{Path: "a"})
	s.Push(PageDetail{Path: "b"})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, PageDetail{Path: "b"}, s.Top())

	assert.True(t, s.Pop())
	assert.Equal(t, PageDetail{Path: "a"}, s.Top())

	s.ResetHome()
	assert.Equal(t, []Route{Home{}}, s.Routes())
}

func TestFollowInternal(t *testing.T) {
	n, opener := newNavigator()

	out, err := n.Follow("/products")
	require.NoError(t, err)
	assert.True(t, out.Pushed)
	assert.Equal(t, links.Internal, out.Link.Kind)
	assert.Equal(t, PageDetail{Path: "products"}, n.Stack().Top())
	assert.Empty(t, opener.urls)
}

func TestFollowHomeDoesNotDuplicate(t *testing.T) {
	n, _ := newNavigator()

	for _, u := range []string{"/", "https://x.com/index", ""} {
		out, err := n.Follow(u)
		require.NoError(t, err)
		assert.False(t, out.Pushed, u)
	}
	assert.Equal(t, 1, n.Stack().Len())

	_, err := n.Follow("/about")
	require.NoError(t, err)
	out, err := n.Follow("/")
	require.NoError(t, err)
	assert.True(t, out.Pushed, "home pushed when another page is on top")
	assert.Equal(t, []Route{Home{}, PageDetail{Path: "about"}, Home{}}, n.Stack().Routes())
}

func TestFollowAnchorIsNoop(t *testing.T) {
	n, opener := newNavigator()

	out, err := n.Follow("#section")
	require.NoError(t, err)
	assert.Equal(t, links.Anchor, out.Link.Kind)
	assert.False(t, out.Pushed)
	assert.False(t, out.Opened)
	assert.Empty(t, opener.urls)
	assert.Equal(t, 1, n.Stack().Len())
}

func TestFollowExternalAndSpecial(t *testing.T) {
	n, opener := newNavigator()

	out, err := n.Follow("https://other.com/x")
	require.NoError(t, err)
	assert.True(t, out.Opened)

	out, err = n.Follow("mailto:a@b.com")
	require.NoError(t, err)
	assert.Equal(t, links.SpecialProtocol, out.Link.Kind)

	assert.Equal(t, []string{"https://other.com/x", "mailto:a@b.com"}, opener.urls)
	assert.Equal(t, 1, n.Stack().Len())
}

func TestFollowOpenerError(t *testing.T) {
	opener := &recordingOpener{err: errors.New("no browser")}
	n := NewNavigator(NewStack(), site.Default(), opener, nil)

	out, err := n.Follow("https://other.com")
	assert.Error(t, err)
	assert.False(t, out.Opened)
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "home", Home{}.String())
	assert.Equal(t, "/docs/intro", PageDetail{Path: "docs/intro"}.String())
}
