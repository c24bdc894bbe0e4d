// Package fetcher retrieves plain-HTML pages and the navigation document
// from an EDS site and parses them.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"edsview/content"
	"edsview/html"
	"edsview/logger"
	"edsview/metrics"
	"edsview/nav"
	"edsview/site"
)

// Options configures the fetcher behavior.
type Options struct {
	UserAgent      string
	TimeoutSeconds int
}

// DefaultUserAgent identifies edsview to the site.
const DefaultUserAgent = "edsview/1.0 (+plain-html)"

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:      DefaultUserAgent,
		TimeoutSeconds: 15,
	}
}

// Timeout returns the request timeout.
func (o Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 8 << 20

// Document kinds used in logs and metrics.
const (
	kindPage = "page"
	kindNav  = "nav"
)

// Service fetches and parses EDS documents.
type Service struct {
	client  *http.Client
	opts    Options
	log     logger.Logger
	metrics *metrics.Metrics
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records fetch outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// New creates a Service.
func New(opts Options, options ...Option) *Service {
	defaults := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = defaults.TimeoutSeconds
	}

	s := &Service{
		client: newHTTPClient(opts.Timeout()),
		opts:   opts,
		log:    logger.NewNop(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// FetchPage fetches and parses the page at path.
func (s *Service) FetchPage(ctx context.Context, cfg site.Config, path string) (*content.Page, error) {
	doc, err := s.fetchDocument(ctx, kindPage, cfg.PlainHTMLURL(path))
	if err != nil {
		return nil, err
	}
	return content.ParseDocument(doc, cfg.SiteURL), nil
}

// FetchHomePage fetches the configured home page.
func (s *Service) FetchHomePage(ctx context.Context, cfg site.Config) (*content.Page, error) {
	return s.FetchPage(ctx, cfg, cfg.HomePath)
}

// FetchNav fetches and parses the navigation document.
func (s *Service) FetchNav(ctx context.Context, cfg site.Config) (*nav.Data, error) {
	doc, err := s.fetchDocument(ctx, kindNav, cfg.NavURL())
	if err != nil {
		return nil, err
	}
	return nav.Parse(doc), nil
}

func (s *Service) fetchDocument(ctx context.Context, kind, url string) (*html.Document, error) {
	log := s.log.With(
		logger.String("request_id", uuid.NewString()),
		logger.String("kind", kind),
		logger.String("url", url),
	)
	start := time.Now()

	doc, err := s.get(ctx, url)
	elapsed := time.Since(start)
	s.metrics.ObserveFetch(kind, outcome(ctx, err), elapsed)

	if err != nil {
		log.Warn("fetch failed", logger.Duration("elapsed", elapsed), logger.Error(err))
		return nil, err
	}
	log.Debug("fetched", logger.Duration("elapsed", elapsed))
	return doc, nil
}

func (s *Service) get(ctx context.Context, url string) (*html.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	doc, err := html.ParseString(string(body))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return doc, nil
}

func outcome(ctx context.Context, err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &httpErr):
		return metrics.OutcomeHTTPError
	case errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeNetworkError
	}
}
