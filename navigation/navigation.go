// Package navigation holds the route stack and turns selected links into
// stack changes or hand-offs to the system browser.
package navigation

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"edsview/links"
	"edsview/logger"
	"edsview/site"
)

// Route is a screen the user can be on: Home or PageDetail.
type Route interface {
	route()
	String() string
}

// Home is the site's home page.
type Home struct{}

func (Home) route()         {}
func (Home) String() string { return "home" }

// PageDetail is any other page, identified by its site-relative path.
type PageDetail struct {
	Path string
}

func (PageDetail) route()           {}
func (p PageDetail) String() string { return "/" + p.Path }

// Stack is the ordered history of routes; the last entry is on screen.
// The root entry is always Home and cannot be popped.
type Stack struct {
	mu     sync.RWMutex
	routes []Route
}

// NewStack creates a stack holding only Home.
func NewStack() *Stack {
	return &Stack{routes: []Route{Home{}}}
}

// Push makes r the current route.
func (s *Stack) Push(r Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, r)
}

// Pop goes back one route. It returns false when only the root is left.
func (s *Stack) Pop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.routes) <= 1 {
		return false
	}
	s.routes = s.routes[:len(s.routes)-1]
	return true
}

// Top returns the current route.
func (s *Stack) Top() Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes[len(s.routes)-1]
}

// Len returns the number of routes on the stack.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.routes)
}

// Routes returns a copy of the stack, root first.
func (s *Stack) Routes() []Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Route(nil), s.routes...)
}

// ResetHome drops everything above the root.
func (s *Stack) ResetHome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = s.routes[:1]
}

// Opener hands a URL to something outside the application.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// SystemOpener opens URLs with the platform's default handler.
type SystemOpener struct{}

// Open launches the platform URL handler without waiting for it to exit.
func (SystemOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	go cmd.Wait()
	return nil
}

// Outcome describes what Follow did.
type Outcome struct {
	Link   links.Result
	Pushed bool // A route was pushed onto the stack
	Opened bool // The URL went to the Opener
}

// Navigator applies link classification to a Stack.
type Navigator struct {
	stack  *Stack
	cfg    site.Config
	opener Opener
	log    logger.Logger
}

// NewNavigator creates a Navigator. A nil logger discards output.
func NewNavigator(stack *Stack, cfg site.Config, opener Opener, log logger.Logger) *Navigator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Navigator{stack: stack, cfg: cfg, opener: opener, log: log}
}

// Stack returns the navigator's route stack.
func (n *Navigator) Stack() *Stack {
	return n.stack
}

// Follow acts on a selected link. Anchors do nothing; in-page scrolling is
// not supported. Special protocols and external links go to the Opener.
// Internal links push a route, except Home when Home is already on top.
func (n *Navigator) Follow(rawURL string) (Outcome, error) {
	res := links.Classify(rawURL, n.cfg)
	out := Outcome{Link: res}
	n.log.Debug("follow link", logger.String("url", rawURL), logger.String("kind", res.Kind.String()))

	switch res.Kind {
	case links.Anchor:
		return out, nil

	case links.SpecialProtocol, links.External:
		if err := n.opener.Open(rawURL); err != nil {
			return out, err
		}
		out.Opened = true
		return out, nil
	}

	if res.Home {
		if _, onHome := n.stack.Top().(Home); onHome {
			return out, nil
		}
		n.stack.Push(Home{})
		out.Pushed = true
		return out, nil
	}

	n.stack.Push(PageDetail{Path: res.Path})
	out.Pushed = true
	return out, nil
}
