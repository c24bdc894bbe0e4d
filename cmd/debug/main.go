// Debug dumps the parsed structure of an EDS plain-HTML document as JSON.
//
// Usage:
//
//	debug page.plain.html          parse a local file
//	debug --site URL about         fetch and parse a page
//	debug --nav nav.plain.html     parse a navigation document
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"edsview/content"
	"edsview/fetcher"
	"edsview/html"
	"edsview/nav"
	"edsview/site"
)

type pageDump struct {
	Title    string        `json:"title"`
	BaseURL  string        `json:"baseUrl"`
	Sections []sectionDump `json:"sections"`
}

type sectionDump struct {
	Metadata map[string]string `json:"metadata,omitempty"`
	Elements []elementDump     `json:"elements"`
}

type elementDump struct {
	Kind     string     `json:"kind"`
	Name     string     `json:"name,omitzero"`
	Variants []string   `json:"variants,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
	HTML     string     `json:"html,omitzero"`
}

func dumpPage(p *content.Page) pageDump {
	d := pageDump{Title: p.Title, BaseURL: p.BaseURL, Sections: []sectionDump{}}
	for _, s := range p.Sections {
		sd := sectionDump{Metadata: s.Metadata, Elements: []elementDump{}}
		for _, e := range s.Elements {
			sd.Elements = append(sd.Elements, dumpElement(e))
		}
		d.Sections = append(d.Sections, sd)
	}
	return d
}

func dumpElement(e content.Element) elementDump {
	switch e := e.(type) {
	case *content.Block:
		d := elementDump{Kind: e.Kind().String(), Name: e.Name, Variants: e.Variants}
		for _, row := range e.Rows {
			cells := make([]string, 0, len(row.Columns))
			for _, col := range row.Columns {
				cells = append(cells, content.ExtractText(col.Node))
			}
			d.Rows = append(d.Rows, cells)
		}
		return d
	case *content.DefaultContent:
		return elementDump{Kind: e.Kind().String(), HTML: e.Node.OuterHTML()}
	default:
		return elementDump{Kind: e.Kind().String()}
	}
}

func main() {
	var (
		siteURL string
		navMode bool
	)

	cmd := &cobra.Command{
		Use:          "debug <file|path>",
		Short:        "Dump the parsed structure of a plain-HTML document",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := site.Config{SiteURL: siteURL}
			v, err := load(cmd.Context(), cfg, args[0], navMode)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVar(&siteURL, "site", site.DefaultSiteURL, "site to fetch from when the argument is not a file")
	cmd.Flags().BoolVar(&navMode, "nav", false, "parse as a navigation document")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load parses arg as a local file when one exists, otherwise fetches it
// as a page path of cfg.
func load(ctx context.Context, cfg site.Config, arg string, navMode bool) (any, error) {
	if _, err := os.Stat(arg); err == nil {
		f, err := os.Open(arg)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		doc, err := html.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", arg, err)
		}
		if navMode {
			return nav.Parse(doc), nil
		}
		return dumpPage(content.ParseDocument(doc, cfg.SiteURL)), nil
	}

	svc := fetcher.New(fetcher.DefaultOptions())
	if navMode {
		return svc.FetchNav(ctx, cfg)
	}
	page, err := svc.FetchPage(ctx, cfg, site.NormalizePath(arg))
	if err != nil {
		return nil, err
	}
	return dumpPage(page), nil
}

func write(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
