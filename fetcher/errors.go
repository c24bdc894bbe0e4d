package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// HTTPError is returned when the site answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// NetworkError wraps a transport, read or parse failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// User-facing messages for fetch failures.
const (
	MsgTimeout     = "The request timed out. Please check your connection and try again."
	MsgUnreachable = "Could not reach the server. Please check your internet connection."
	MsgConnect     = "Unable to connect. Please try again later."
	MsgNotFound    = "Page not found."
	MsgUnavailable = "The server is temporarily unavailable. Please try again later."
	MsgGeneric     = "Failed to load the page. Please try again."
)

// UserMessage maps a fetch error to a message suitable for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return MsgNotFound
		case http.StatusInternalServerError, http.StatusServiceUnavailable:
			return MsgUnavailable
		default:
			return MsgGeneric
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Timeout() {
		return MsgTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return MsgUnreachable
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return MsgConnect
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return MsgConnect
	}

	return MsgGeneric
}
