package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainHTMLURL(t *testing.T) {
	cfg := Config{SiteURL: "https://x.com"}

	tests := []struct {
		path string
		want string
	}{
		{"", "https://x.com/index.plain.html"},
		{"/", "https://x.com/index.plain.html"},
		{"about", "https://x.com/about.plain.html"},
		{"/about", "https://x.com/about.plain.html"},
		{"docs/", "https://x.com/docs/index.plain.html"},
		{"a/b", "https://x.com/a/b.plain.html"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.PlainHTMLURL(tt.path))
		})
	}
}

func TestPageURL(t *testing.T) {
	cfg := Config{SiteURL: "https://x.com"}

	assert.Equal(t, "https://x.com", cfg.PageURL(""))
	assert.Equal(t, "https://x.com", cfg.PageURL("///"))
	assert.Equal(t, "https://x.com/about", cfg.PageURL("//about"))
}

func TestNavURL(t *testing.T) {
	assert.Equal(t, DefaultSiteURL+"/nav.plain.html", Default().NavURL())
}

func TestResolveURL(t *testing.T) {
	cfg := Config{SiteURL: "https://x.com"}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute https", "https://cdn.com/a.png", "https://cdn.com/a.png"},
		{"absolute http", "http://cdn.com/a.png", "http://cdn.com/a.png"},
		{"dot relative", "./media/a.png", "https://x.com/media/a.png"},
		{"root relative", "/media/a.png", "https://x.com/media/a.png"},
		{"bare", "media/a.png", "https://x.com/media/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cfg.ResolveURL(tt.ref)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative forms land on the site", func(t *testing.T) {
		for _, ref := range []string{"./a", "/a", "a"} {
			got, _ := cfg.ResolveURL(ref)
			assert.True(t, strings.HasPrefix(got, cfg.SiteURL), ref)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, ok := cfg.ResolveURL("")
		assert.False(t, ok)
		assert.Empty(t, got)
	})
}

func TestHost(t *testing.T) {
	assert.Equal(t, "main--aem-boilerplate--adobe.aem.live", Default().Host())
	assert.Equal(t, "x.com", Config{SiteURL: "http://x.com/sub/path"}.Host())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.Error(t, Config{SiteURL: "ftp://x.com"}.Validate())
	assert.Error(t, Config{SiteURL: "x.com"}.Validate())
	assert.Error(t, Config{SiteURL: "https://"}.Validate())
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "index", NormalizePath(""))
	assert.Equal(t, "index", NormalizePath("/"))
	assert.Equal(t, "about", NormalizePath("/about.html"))
	assert.Equal(t, "docs/intro", NormalizePath("/docs/intro/"))
}

func TestIsHomePath(t *testing.T) {
	cfg := Config{SiteURL: "https://x.com", HomePath: "en"}

	assert.True(t, cfg.IsHomePath(""))
	assert.True(t, cfg.IsHomePath("index"))
	assert.True(t, cfg.IsHomePath("en"))
	assert.False(t, cfg.IsHomePath("about"))
}

func TestFragmentPath(t *testing.T) {
	assert.Equal(t, "fragments/footer", FragmentPath("https://x.com/fragments/footer"))
	assert.Equal(t, "fragments/footer", FragmentPath("/fragments/footer"))
	assert.Equal(t, "fragments/footer", FragmentPath("fragments/footer"))
	assert.Equal(t, "", FragmentPath("https://x.com"))
	assert.Equal(t, "frag", FragmentPath("//frag"))
	assert.Equal(t, "ftp://x.com/f", FragmentPath("ftp://x.com/f"))
}
