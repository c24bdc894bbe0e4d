package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"edsview/cache"
	"edsview/config"
	"edsview/content"
	"edsview/fetcher"
	"edsview/logger"
	"edsview/metrics"
	"edsview/render"
	"edsview/site"
)

var (
	cfgFile     string
	siteURL     string
	homePath    string
	logLevel    string
	metricsAddr string
	width       int
	noColor     bool

	rootCmd = &cobra.Command{
		Use:           "edsview [path]",
		Short:         "Read Edge Delivery Services sites in the terminal",
		Long:          `Edsview fetches the plain-HTML rendition of EDS pages and renders them as text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args)
		},
	}
)

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.config/edsview/config.toml)")
	flags.StringVar(&siteURL, "site", "", "site URL, overrides site.url")
	flags.StringVar(&homePath, "home", "", "home page path, overrides site.homePath")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.IntVar(&width, "width", 0, "output width (default is the terminal width)")
	flags.BoolVar(&noColor, "no-color", false, "disable ANSI styling")

	rootCmd.AddCommand(pageCommand())
	rootCmd.AddCommand(navCommand())
	rootCmd.AddCommand(browseCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "init-config",
		Short: "Print the default config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.DefaultTOML())
		},
	})
}

// app holds the services shared by every command.
type app struct {
	cfg      *config.Config
	site     site.Config
	log      logger.Logger
	metrics  *metrics.Metrics
	fetcher  *fetcher.Service
	cache    *cache.PageCache
	renderer *render.Renderer
}

// newApp loads configuration, applies command-line overrides and builds
// the services.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, errors.New(config.FormatError(err))
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(config.FormatError(err))
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	m := metrics.New()
	siteCfg := cfg.SiteConfig()
	svc := fetcher.New(cfg.FetcherOptions(),
		fetcher.WithLogger(log),
		fetcher.WithMetrics(m),
	)

	w := width
	if w <= 0 {
		w = render.TerminalWidth(os.Stdout, cfg.Rendering.DefaultWidth)
	}
	r := render.New(siteCfg, cfg.RenderOptions(w),
		render.WithFragmentLoader(svc),
		render.WithLogger(log),
	)

	log.Debug("configuration loaded",
		logger.String("site", siteCfg.SiteURL),
		logger.String("home_path", siteCfg.HomePath),
		logger.Int("width", w),
		logger.Bool("color", cfg.Rendering.Color),
	)

	return &app{
		cfg:      cfg,
		site:     siteCfg,
		log:      log,
		metrics:  m,
		fetcher:  svc,
		cache:    cache.New(),
		renderer: r,
	}, nil
}

// applyFlags layers explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("site") {
		cfg.Site.URL = siteURL
	}
	if flags.Changed("home") {
		cfg.Site.HomePath = homePath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if noColor {
		cfg.Rendering.Color = false
	}
}

// close flushes the logger.
func (a *app) close() {
	_ = a.log.Sync()
}

// fetchError logs err and returns the message shown to the user.
func (a *app) fetchError(what string, err error) error {
	a.log.Warn("fetch failed", logger.String("target", what), logger.Error(err))
	return errors.New(fetcher.UserMessage(err))
}

func pageCommand() *cobra.Command {
	var showLinks bool
	cmd := &cobra.Command{
		Use:   "page [path]",
		Short: "Print one page and exit",
		Long:  `Print renders the page at path, or the home page when path is omitted.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			path := ""
			if len(args) == 1 {
				path = site.NormalizePath(args[0])
			}

			var page *content.Page
			if a.site.IsHomePath(path) {
				page, err = a.fetcher.FetchHomePage(ctx, a.site)
			} else {
				page, err = a.fetcher.FetchPage(ctx, a.site, path)
			}
			if err != nil {
				return a.fetchError(a.site.PlainHTMLURL(path), err)
			}

			out := a.renderer.Page(ctx, page)
			fmt.Fprint(cmd.OutOrStdout(), out.String())
			if showLinks {
				printLinks(cmd, out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLinks, "links", false, "list link targets after the page")
	return cmd
}

func navCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the site navigation and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			data, err := a.fetcher.FetchNav(cmd.Context(), a.site)
			if err != nil {
				return a.fetchError(a.site.NavURL(), err)
			}
			out := a.renderer.Nav(data)
			fmt.Fprint(cmd.OutOrStdout(), out.String())
			printLinks(cmd, out)
			return nil
		},
	}
}

func printLinks(cmd *cobra.Command, out *render.Output) {
	if len(out.Links) == 0 {
		return
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	for i, href := range out.Links {
		fmt.Fprintf(w, "[%d] %s\n", i+1, href)
	}
}
