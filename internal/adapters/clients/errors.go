// Package clients provides the instrumented HTTP client used to reach the
// upstream quote hosts and, from the CLI, the quote proxy.
package clients

import (
	"errors"
	"fmt"
)

// Infrastructure errors. The acl package translates them into domain errors.
var (
	// ErrCircuitOpen is returned without touching the network while the
	// host's circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError reports a 5xx response. Body holds the start of the response
// body for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}
