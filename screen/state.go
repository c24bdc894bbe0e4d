package screen

import (
	"edsview/content"
	"edsview/fetcher"
)

// State is the lifecycle state of a screen.
type State int

const (
	Idle State = iota
	Loading
	Refreshing
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Refreshing:
		return "refreshing"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is the complete observable state of a screen.
type Snapshot struct {
	State State
	// Page is the page on display. It survives a failed refresh.
	Page *content.Page
	// Err and Message are set in the Failed state.
	Err     error
	Message string
	// Token identifies the load in flight; completions carrying another
	// token are stale and ignored.
	Token string
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// CacheHit means the page was found in the cache on mount.
type CacheHit struct {
	Page *content.Page
}

// LoadStarted begins a load with nothing (or nothing worth keeping) shown.
type LoadStarted struct {
	Token string
}

// RefreshStarted begins a reload while keeping the current page shown.
type RefreshStarted struct {
	Token string
}

// LoadSucceeded completes the load identified by Token.
type LoadSucceeded struct {
	Token string
	Page  *content.Page
}

// LoadFailed completes the load identified by Token with an error.
type LoadFailed struct {
	Token string
	Err   error
}

func (CacheHit) event()       {}
func (LoadStarted) event()    {}
func (RefreshStarted) event() {}
func (LoadSucceeded) event()  {}
func (LoadFailed) event()     {}

// Reduce computes the next snapshot. It is pure: completions for a token
// other than the current one return s unchanged.
func Reduce(s Snapshot, e Event) Snapshot {
	switch e := e.(type) {
	case CacheHit:
		return Snapshot{State: Loaded, Page: e.Page}

	case LoadStarted:
		return Snapshot{State: Loading, Page: s.Page, Token: e.Token}

	case RefreshStarted:
		return Snapshot{State: Refreshing, Page: s.Page, Token: e.Token}

	case LoadSucceeded:
		if e.Token != s.Token {
			return s
		}
		return Snapshot{State: Loaded, Page: e.Page}

	case LoadFailed:
		if e.Token != s.Token {
			return s
		}
		return Snapshot{
			State:   Failed,
			Page:    s.Page,
			Err:     e.Err,
			Message: fetcher.UserMessage(e.Err),
		}
	}
	return s
}
