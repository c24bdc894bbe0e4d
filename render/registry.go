package render

import (
	"strings"

	"edsview/content"
)

// BlockHandler draws one block.
type BlockHandler func(w *Writer, b *content.Block)

type containsRule struct {
	substr  string
	handler BlockHandler
}

// Registry maps block names to handlers. Lookup tries, in order: the skip
// set, an exact name match, substring rules in registration order, then the
// fallback handler.
type Registry struct {
	skip     map[string]bool
	exact    map[string]BlockHandler
	contains []containsRule
	fallback BlockHandler
}

// NewRegistry creates an empty registry whose fallback draws nothing.
func NewRegistry() *Registry {
	return &Registry{
		skip:  map[string]bool{},
		exact: map[string]BlockHandler{},
	}
}

// SkipBlocks are drawn elsewhere (or not at all) in the default registry.
var SkipBlocks = []string{"footer", "navigation", "header", "nav"}

// DefaultRegistry returns a registry with the built-in handlers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Skip(SkipBlocks...)

	r.Register("hero", Hero)
	r.Register("columns", Columns)
	r.Register("cards", Cards)
	r.Register("fragment", Fragment)

	r.RegisterContains("hero", Hero)
	r.RegisterContains("columns", Columns)
	r.RegisterContains("card", Cards)

	r.SetFallback(Generic)
	return r
}

// Register binds a handler to an exact block name.
func (r *Registry) Register(name string, h BlockHandler) {
	r.exact[strings.ToLower(name)] = h
}

// RegisterContains binds a handler to every block name containing substr.
func (r *Registry) RegisterContains(substr string, h BlockHandler) {
	r.contains = append(r.contains, containsRule{substr: strings.ToLower(substr), handler: h})
}

// Skip marks block names that render nothing.
func (r *Registry) Skip(names ...string) {
	for _, n := range names {
		r.skip[strings.ToLower(n)] = true
	}
}

// SetFallback sets the handler for names nothing else matches.
func (r *Registry) SetFallback(h BlockHandler) {
	r.fallback = h
}

// Lookup returns the handler for a block name. It returns false for
// skipped names and when no handler applies.
func (r *Registry) Lookup(name string) (BlockHandler, bool) {
	name = strings.ToLower(name)
	if r.skip[name] {
		return nil, false
	}
	if h, ok := r.exact[name]; ok {
		return h, true
	}
	for _, rule := range r.contains {
		if strings.Contains(name, rule.substr) {
			return rule.handler, true
		}
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}
