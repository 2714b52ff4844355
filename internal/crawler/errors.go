package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrDeadLink is the umbrella error for every failed fetch.
	ErrDeadLink = errors.New("dead link")

	// ErrNotTextual is returned when a response body is not text.
	ErrNotTextual = fmt.Errorf("%w: response is not textual", ErrDeadLink)

	// ErrInvalidProxy is returned when a SOCKS5 dialer cannot be created.
	ErrInvalidProxy = errors.New("invalid proxy address")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrDeadLink) match status failures.
func (e *StatusError) Unwrap() error {
	return ErrDeadLink
}
