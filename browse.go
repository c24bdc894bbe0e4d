package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"edsview/fetcher"
	"edsview/logger"
	"edsview/nav"
	"edsview/navigation"
	"edsview/render"
	"edsview/screen"
)

// maxPromptWidth bounds the route shown in the prompt.
const maxPromptWidth = 40

const browseHelp = `Commands:
  <n>        follow link n
  b          back
  r          refresh (retry after a failure)
  h          home
  n          show navigation
  c          clear the page cache
  o <url>    follow a URL
  ?          help
  q          quit`

func browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse the site interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if a.cfg.Metrics.Addr != "" {
		stop := serveMetrics(a.cfg.Metrics.Addr, a.metrics.Handler(), a.log)
		defer stop()
	}

	b := newBrowser(a, cmd.InOrStdin(), cmd.OutOrStdout(), navigation.SystemOpener{})
	start := ""
	if len(args) == 1 {
		start = args[0]
	}
	return b.run(ctx, start)
}

// serveMetrics exposes handler on addr until the returned function is
// called.
func serveMetrics(addr string, handler http.Handler, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", logger.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// browser is the interactive session: a route stack, the screen for the
// route on top and the last output shown, whose links are numbered.
type browser struct {
	*app
	nav     *navigation.Navigator
	in      io.Reader
	out     io.Writer
	screen  *screen.Screen
	shown   *render.Output
	navData *nav.Data
}

func newBrowser(a *app, in io.Reader, out io.Writer, opener navigation.Opener) *browser {
	stack := navigation.NewStack()
	return &browser{
		app: a,
		nav: navigation.NewNavigator(stack, a.site, opener, a.log.With(logger.String("component", "navigation"))),
		in:  in,
		out: out,
	}
}

// run loads the navigation and the first screen concurrently, then reads
// commands until quit, end of input or cancellation.
func (b *browser) run(ctx context.Context, start string) error {
	if start != "" {
		if _, err := b.nav.Follow(start); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := b.fetcher.FetchNav(gctx, b.site)
		if err != nil {
			b.log.Warn("navigation unavailable", logger.Error(err))
			return nil
		}
		b.navData = data
		return nil
	})
	var first screen.Snapshot
	g.Go(func() error {
		b.screen = b.screenFor(b.nav.Stack().Top())
		first = b.screen.Mount(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	b.show(ctx, first)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(b.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		b.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(b.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := b.handle(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// handle executes one command line and reports whether to quit.
func (b *browser) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
	case "q", "quit":
		return true
	case "?", "help":
		fmt.Fprintln(b.out, browseHelp)
	case "b", "back":
		if !b.nav.Stack().Pop() {
			b.message("Already at the first page", false)
			return false
		}
		b.open(ctx)
	case "h", "home":
		b.nav.Stack().ResetHome()
		b.open(ctx)
	case "r", "refresh":
		if b.screen.Snapshot().State == screen.Failed {
			b.show(ctx, b.screen.Retry(ctx))
		} else {
			b.show(ctx, b.screen.Refresh(ctx))
		}
	case "n", "nav":
		b.showNav(ctx)
	case "c", "clear":
		n := b.cache.Len()
		b.cache.Clear()
		b.message(fmt.Sprintf("Cleared %d cached pages", n), false)
	case "o", "open":
		if arg == "" {
			b.message("Usage: o <url>", true)
			return false
		}
		b.follow(ctx, strings.TrimSpace(arg))
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			b.message(fmt.Sprintf("Unknown command %q, ? for help", cmd), true)
			return false
		}
		href, ok := b.shown.Link(n)
		if !ok {
			b.message(fmt.Sprintf("No link [%d]", n), true)
			return false
		}
		b.follow(ctx, href)
	}
	return false
}

func (b *browser) follow(ctx context.Context, href string) {
	out, err := b.nav.Follow(href)
	switch {
	case err != nil:
		b.log.Warn("open failed", logger.String("url", href), logger.Error(err))
		b.message("Could not open "+href, true)
	case out.Opened:
		b.message("Opened "+href+" externally", false)
	case out.Pushed:
		b.open(ctx)
	case out.Link.Home:
		b.message("Already on the home page", false)
	default:
		b.message("In-page links are not followed", false)
	}
}

// open mounts the screen for the route on top of the stack.
func (b *browser) open(ctx context.Context) {
	b.screen = b.screenFor(b.nav.Stack().Top())
	b.show(ctx, b.screen.Mount(ctx))
}

func (b *browser) screenFor(r navigation.Route) *screen.Screen {
	s := screen.ForRoute(r, b.site, b.fetcher, b.cache,
		screen.WithLogger(b.log.With(logger.String("route", r.String()))),
		screen.WithMetrics(b.metrics),
	)
	s.Subscribe(func(snap screen.Snapshot) {
		switch snap.State {
		case screen.Loading:
			b.message("Loading "+r.String()+"...", false)
		case screen.Refreshing:
			b.message("Refreshing "+r.String()+"...", false)
		}
	})
	return s
}

// show prints a snapshot. A failure with a page still on display prints
// the page followed by the error.
func (b *browser) show(ctx context.Context, snap screen.Snapshot) {
	if snap.Page != nil {
		b.shown = b.renderer.Page(ctx, snap.Page)
		fmt.Fprint(b.out, b.shown.String())
	} else {
		b.shown = &render.Output{}
	}
	if snap.State == screen.Failed {
		b.message(snap.Message+" (r to retry)", true)
	}
}

func (b *browser) showNav(ctx context.Context) {
	if b.navData == nil {
		data, err := b.fetcher.FetchNav(ctx, b.site)
		if err != nil {
			b.log.Warn("navigation unavailable", logger.Error(err))
			b.message(fetcher.UserMessage(err), true)
			return
		}
		b.navData = data
	}
	b.shown = b.renderer.Nav(b.navData)
	fmt.Fprint(b.out, b.shown.String())
}

func (b *browser) message(text string, isError bool) {
	fmt.Fprintln(b.out, b.renderer.Message(text, isError))
}

func (b *browser) prompt() {
	fmt.Fprintf(b.out, "%s> ", render.Truncate(b.nav.Stack().Top().String(), maxPromptWidth))
}
