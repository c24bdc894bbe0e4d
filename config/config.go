// Package config loads edsview settings from a TOML file, .env files and
// environment variables, layered over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"edsview/fetcher"
	"edsview/logger"
	"edsview/render"
	"edsview/site"
)

// Site selects the EDS site to browse.
type Site struct {
	URL      string `toml:"url"`
	HomePath string `toml:"homePath"`
}

// Fetcher configures HTTP fetching.
type Fetcher struct {
	UserAgent      string `toml:"userAgent"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

// Rendering configures terminal output.
type Rendering struct {
	DefaultWidth int  `toml:"defaultWidth"` // Used when stdout is not a terminal
	Color        bool `toml:"color"`
}

// Logging configures the structured logger.
type Logging struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Addr string `toml:"addr"` // Empty disables the endpoint
}

// Config is the complete edsview configuration.
type Config struct {
	Site      Site      `toml:"site"`
	Fetcher   Fetcher   `toml:"fetcher"`
	Rendering Rendering `toml:"rendering"`
	Logging   Logging   `toml:"logging"`
	Metrics   Metrics   `toml:"metrics"`
}

// Environment variables that override file settings.
const (
	EnvSiteURL        = "EDSVIEW_SITE_URL"
	EnvHomePath       = "EDSVIEW_HOME_PATH"
	EnvLogLevel       = "EDSVIEW_LOG_LEVEL"
	EnvTimeoutSeconds = "EDSVIEW_TIMEOUT_SECONDS"
)

// Default returns the built-in configuration.
func Default() *Config {
	fetch := fetcher.DefaultOptions()
	return &Config{
		Site: Site{
			URL:      site.DefaultSiteURL,
			HomePath: "",
		},
		Fetcher: Fetcher{
			UserAgent:      fetch.UserAgent,
			TimeoutSeconds: fetch.TimeoutSeconds,
		},
		Rendering: Rendering{
			DefaultWidth: render.DefaultWidth,
			Color:        true,
		},
		Logging: Logging{
			Level: logger.DefaultLevel,
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "edsview"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load builds the configuration: defaults, then the TOML file at path
// (the user config file when path is empty), then .env and .env.local,
// then the process environment. A missing default config file is not an
// error; a missing explicit path is. The result is not validated, so that
// command-line overrides can be applied first; call Validate afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	loadDotEnv(".env", ".env.local")
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile layers a TOML file over cfg. Only keys present in the file
// override, so an explicit false or empty string is honoured.
func loadFile(cfg *Config, path string) error {
	var user Config
	md, err := toml.DecodeFile(path, &user)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading config from %s: %w", path, err)
		}
		return fmt.Errorf("parsing config TOML %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parsing config TOML %s: unknown key %q", path, undecoded[0].String())
	}

	if md.IsDefined("site", "url") {
		cfg.Site.URL = user.Site.URL
	}
	if md.IsDefined("site", "homePath") {
		cfg.Site.HomePath = user.Site.HomePath
	}
	if md.IsDefined("fetcher", "userAgent") {
		cfg.Fetcher.UserAgent = user.Fetcher.UserAgent
	}
	if md.IsDefined("fetcher", "timeoutSeconds") {
		cfg.Fetcher.TimeoutSeconds = user.Fetcher.TimeoutSeconds
	}
	if md.IsDefined("rendering", "defaultWidth") {
		cfg.Rendering.DefaultWidth = user.Rendering.DefaultWidth
	}
	if md.IsDefined("rendering", "color") {
		cfg.Rendering.Color = user.Rendering.Color
	}
	if md.IsDefined("logging", "level") {
		cfg.Logging.Level = user.Logging.Level
	}
	if md.IsDefined("logging", "development") {
		cfg.Logging.Development = user.Logging.Development
	}
	if md.IsDefined("metrics", "addr") {
		cfg.Metrics.Addr = user.Metrics.Addr
	}
	return nil
}

// loadDotEnv loads env files that exist. Variables already set in the
// process environment win.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSiteURL); ok && v != "" {
		cfg.Site.URL = v
	}
	if v, ok := lookup(EnvHomePath); ok {
		cfg.Site.HomePath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvTimeoutSeconds); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeoutSeconds, err)
		}
		cfg.Fetcher.TimeoutSeconds = n
	}
	return nil
}

// Validate checks the settings that would otherwise fail later.
func (c *Config) Validate() error {
	if err := c.SiteConfig().Validate(); err != nil {
		return fmt.Errorf("site.url: %w", err)
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetcher.timeoutSeconds must be positive, got %d", c.Fetcher.TimeoutSeconds)
	}
	return nil
}

// SiteConfig returns the site settings with surrounding slashes trimmed
// from the home path and the trailing slash trimmed from the URL.
func (c *Config) SiteConfig() site.Config {
	return site.Config{
		SiteURL:  strings.TrimRight(c.Site.URL, "/"),
		HomePath: strings.Trim(c.Site.HomePath, "/"),
	}
}

// FetcherOptions returns the fetcher settings.
func (c *Config) FetcherOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:      c.Fetcher.UserAgent,
		TimeoutSeconds: c.Fetcher.TimeoutSeconds,
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Logging.Level,
		Development: c.Logging.Development,
	}
}

// RenderOptions returns the render settings for a terminal of the given
// width; width <= 0 means unknown.
func (c *Config) RenderOptions(width int) render.Options {
	if width <= 0 {
		width = c.Rendering.DefaultWidth
	}
	return render.Options{Width: width, Color: c.Rendering.Color}
}

// DefaultTOML returns a commented default config file.
func DefaultTOML() string {
	return `# edsview configuration
# Save to ~/.config/edsview/config.toml and customize
# Only include settings you want to change from defaults

# EDS site to browse
[site]
url = "` + site.DefaultSiteURL + `"
homePath = ""                 # Path of the home page (empty = /index)

# HTTP fetching settings
[fetcher]
userAgent = "` + fetcher.DefaultUserAgent + `"
timeoutSeconds = 15

# Rendering settings
[rendering]
defaultWidth = 80             # Width when stdout is not a terminal
color = true                  # ANSI styling for headings and links

# Logging (written to stderr)
[logging]
level = "warn"                # debug, info, warn or error
development = false           # Human-readable console output

# Prometheus metrics
[metrics]
addr = ""                     # e.g. "127.0.0.1:9090"; empty disables /metrics
`
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
