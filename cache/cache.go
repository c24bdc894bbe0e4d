// Package cache provides the in-memory page cache shared by screens.
package cache

import (
	"sync"

	"edsview/content"
)

// HomeKey is the reserved key for the home route. Home is never cached
// under its path, so a page literally named "index" keeps its own entry.
const HomeKey = "__home__"

// PageCache maps logical page keys to parsed pages.
//
// Entries live until removed or cleared; there is no size limit or expiry.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]*content.Page
}

// New creates an empty page cache.
func New() *PageCache {
	return &PageCache{pages: make(map[string]*content.Page)}
}

// Get retrieves the page stored under key.
func (c *PageCache) Get(key string) (*content.Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.pages[key]
	return page, ok
}

// Put stores a page, replacing any previous entry.
func (c *PageCache) Put(key string, page *content.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = page
}

// Remove deletes the entry for key, if any.
func (c *PageCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, key)
}

// Contains checks if an entry exists for key.
func (c *PageCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pages[key]
	return ok
}

// Clear drops every entry.
func (c *PageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.pages)
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
