package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edsview/config"
)

func TestSiteFlagOverridesInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[site]\nurl = \"not a url\"\n"), 0o644))
	t.Setenv(config.EnvSiteURL, "")
	t.Cleanup(func() { cfgFile, siteURL = "", "" })

	require.NoError(t, rootCmd.ParseFlags([]string{"--config", path, "--site", "https://flag.example/"}))

	a, err := newApp(rootCmd)
	require.NoError(t, err)
	defer a.close()
	assert.Equal(t, "https://flag.example", a.site.SiteURL)
}
