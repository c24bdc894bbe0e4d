// Test pages fetches every page linked from a site's navigation and
// reports how each one parses and renders.
package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"edsview/content"
	"edsview/fetcher"
	"edsview/links"
	"edsview/render"
	"edsview/site"
)

type report struct {
	path     string
	err      error
	elapsed  time.Duration
	title    string
	sections int
	blocks   map[string]int
	defaults int
	lines    int
	links    int
}

func main() {
	var (
		siteURL  string
		parallel int
	)

	cmd := &cobra.Command{
		Use:          "testpages [path...]",
		Short:        "Fetch and render pages to validate a site",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := site.Config{SiteURL: strings.TrimRight(siteURL, "/")}
			if err := cfg.Validate(); err != nil {
				return err
			}
			svc := fetcher.New(fetcher.DefaultOptions())

			paths := args
			if len(paths) == 0 {
				var err error
				if paths, err = navPaths(cmd.Context(), svc, cfg); err != nil {
					return err
				}
			}

			reports := check(cmd.Context(), svc, cfg, paths, parallel)
			failed := 0
			for _, r := range reports {
				printReport(r)
				fmt.Println(strings.Repeat("=", 80))
				if r.err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pages failed", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&siteURL, "site", site.DefaultSiteURL, "site to test")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "pages fetched at once")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// navPaths returns the home page followed by every internal page the
// navigation links to, without duplicates.
func navPaths(ctx context.Context, svc *fetcher.Service, cfg site.Config) ([]string, error) {
	data, err := svc.FetchNav(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("fetching navigation: %w", err)
	}

	paths := []string{""}
	add := func(href string) {
		res := links.Classify(href, cfg)
		if res.Kind != links.Internal || res.Home || slices.Contains(paths, res.Path) {
			return
		}
		paths = append(paths, res.Path)
	}
	if data.Brand != nil {
		add(data.Brand.Href)
	}
	for _, s := range data.Sections {
		for _, item := range s.Items {
			add(item.Href)
		}
	}
	return paths, nil
}

func check(ctx context.Context, svc *fetcher.Service, cfg site.Config, paths []string, parallel int) []report {
	r := render.New(cfg, render.Options{Width: render.DefaultWidth}, render.WithFragmentLoader(svc))
	reports := make([]report, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = checkPage(gctx, svc, r, cfg, path)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func checkPage(ctx context.Context, svc *fetcher.Service, r *render.Renderer, cfg site.Config, path string) report {
	rep := report{path: path, blocks: map[string]int{}}
	start := time.Now()

	var page *content.Page
	var err error
	if cfg.IsHomePath(path) {
		page, err = svc.FetchHomePage(ctx, cfg)
	} else {
		page, err = svc.FetchPage(ctx, cfg, path)
	}
	rep.elapsed = time.Since(start)
	if err != nil {
		rep.err = err
		return rep
	}

	rep.title = page.Title
	rep.sections = len(page.Sections)
	for _, s := range page.Sections {
		for _, e := range s.Elements {
			if b, ok := e.(*content.Block); ok {
				rep.blocks[b.Name]++
			} else {
				rep.defaults++
			}
		}
	}

	out := r.Page(ctx, page)
	rep.lines = len(out.Lines)
	rep.links = len(out.Links)
	return rep
}

func printReport(r report) {
	fmt.Printf("Testing: /%s\n", r.path)
	if r.err != nil {
		fmt.Printf("  ERROR: %s (%v)\n", fetcher.UserMessage(r.err), r.err)
		return
	}
	fmt.Printf("  Fetched in %s\n", r.elapsed.Round(time.Millisecond))
	fmt.Printf("  Title: %q\n", render.Truncate(r.title, 60))
	fmt.Printf("  Sections: %d, default content: %d\n", r.sections, r.defaults)

	names := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("    %s x%d\n", name, r.blocks[name])
	}
	fmt.Printf("  Rendered: %d lines, %d links\n", r.lines, r.links)
}
