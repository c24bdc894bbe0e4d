// Package screen drives the fetch-and-display lifecycle of one page:
// cache-first mount, pull-to-refresh and retry.
package screen

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"edsview/cache"
	"edsview/content"
	"edsview/logger"
	"edsview/metrics"
	"edsview/navigation"
	"edsview/site"
)

// Loader fetches the page a screen shows.
type Loader func(ctx context.Context) (*content.Page, error)

// PageFetcher is the part of fetcher.Service screens need.
type PageFetcher interface {
	FetchPage(ctx context.Context, cfg site.Config, path string) (*content.Page, error)
	FetchHomePage(ctx context.Context, cfg site.Config) (*content.Page, error)
}

// Screen owns the state of one displayed page.
//
// Load methods block until their fetch completes and return the snapshot
// current at that point. They may be called from several goroutines; the
// most recently started load wins.
type Screen struct {
	key     string
	load    Loader
	cache   *cache.PageCache
	log     logger.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	snap Snapshot
	subs []subscriber
	next int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Option customises a Screen.
type Option func(*Screen)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Screen) { s.log = l }
}

// WithMetrics records cache lookups and transitions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Screen) { s.metrics = m }
}

// New creates a screen for the given cache key.
func New(key string, load Loader, c *cache.PageCache, opts ...Option) *Screen {
	s := &Screen{
		key:   key,
		load:  load,
		cache: c,
		log:   logger.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(logger.String("screen", key))
	return s
}

// ForRoute builds the screen for a navigation route.
func ForRoute(r navigation.Route, cfg site.Config, f PageFetcher, c *cache.PageCache, opts ...Option) *Screen {
	switch r := r.(type) {
	case navigation.PageDetail:
		path := r.Path
		return New(path, func(ctx context.Context) (*content.Page, error) {
			return f.FetchPage(ctx, cfg, path)
		}, c, opts...)
	default:
		return New(cache.HomeKey, func(ctx context.Context) (*content.Page, error) {
			return f.FetchHomePage(ctx, cfg)
		}, c, opts...)
	}
}

// Key returns the cache key of the screen.
func (s *Screen) Key() string {
	return s.key
}

// Snapshot returns the current state.
func (s *Screen) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes the subscription.
func (s *Screen) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

// Mount shows the cached page if there is one, otherwise loads it.
func (s *Screen) Mount(ctx context.Context) Snapshot {
	page, ok := s.cache.Get(s.key)
	s.metrics.CacheLookup(ok)
	if ok {
		s.log.Debug("cache hit")
		return s.dispatch(CacheHit{Page: page})
	}

	token := uuid.NewString()
	s.dispatch(LoadStarted{Token: token})
	return s.run(ctx, token)
}

// Refresh evicts the cached page and reloads it, keeping the current page
// on display until the load completes.
func (s *Screen) Refresh(ctx context.Context) Snapshot {
	s.evict()
	token := uuid.NewString()
	s.dispatch(RefreshStarted{Token: token})
	return s.run(ctx, token)
}

// Retry repeats the load after a failure. It shows Loading when no page
// has been displayed yet and Refreshing otherwise.
func (s *Screen) Retry(ctx context.Context) Snapshot {
	s.evict()
	token := uuid.NewString()
	if s.Snapshot().Page == nil {
		s.dispatch(LoadStarted{Token: token})
	} else {
		s.dispatch(RefreshStarted{Token: token})
	}
	return s.run(ctx, token)
}

func (s *Screen) evict() {
	s.cache.Remove(s.key)
	s.metrics.CacheEvicted()
}

func (s *Screen) run(ctx context.Context, token string) Snapshot {
	page, err := s.load(ctx)
	if err != nil {
		s.log.Warn("load failed", logger.Error(err))
		return s.dispatch(LoadFailed{Token: token, Err: err})
	}
	return s.dispatch(LoadSucceeded{Token: token, Page: page})
}

// dispatch applies e and notifies subscribers unless it was a stale
// completion. A successful completion is written to the cache only if it
// was current.
func (s *Screen) dispatch(e Event) Snapshot {
	s.mu.Lock()
	stale := isStale(s.snap, e)
	s.snap = Reduce(s.snap, e)
	next := s.snap

	if done, ok := e.(LoadSucceeded); ok && !stale {
		s.cache.Put(s.key, done.Page)
	}

	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub.fn)
	}
	s.mu.Unlock()

	if stale {
		s.log.Debug("stale completion ignored")
		return next
	}
	s.metrics.StateChanged(next.State.String())
	for _, fn := range subs {
		fn(next)
	}
	return next
}

func isStale(s Snapshot, e Event) bool {
	switch e := e.(type) {
	case LoadSucceeded:
		return e.Token != s.Token
	case LoadFailed:
		return e.Token != s.Token
	}
	return false
}
