package httpretry

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Outcome drives the retry loop.
type Outcome int

const (
	Success Outcome = iota
	Retryable
	Terminal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Retryable:
		return "retryable"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Classify maps a finished attempt to an Outcome. Any transport error,
// including a per-attempt timeout, is retryable. So are 5xx and 429.
// Every other 4xx is a client rejection and is never retried.
func Classify(status int, err error) Outcome {
	if err != nil {
		return Retryable
	}
	switch {
	case status >= http.StatusInternalServerError, status == http.StatusTooManyRequests:
		return Retryable
	case status >= http.StatusBadRequest:
		return Terminal
	default:
		return Success
	}
}

// StatusError is returned for a non-success HTTP status, either immediately
// (client rejection) or once retries are exhausted.
type StatusError struct {
	Path       string
	StatusCode int
	Status     string
	Body       string
	Attempts   int
}

func (e *StatusError) Error() string {
	body := e.Body
	if body == "" {
		body = "empty or unreadable response body"
	}
	return fmt.Sprintf("%s: http %s after %d attempt(s): %s", e.Path, e.Status, e.Attempts, body)
}

func (e *StatusError) Transient() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// TransportError wraps a failure below HTTP (dial, TLS, reset, timeout).
type TransportError struct {
	Path     string
	Attempts int
	TimedOut bool
	Timeout  time.Duration
	Err      error
}

func (e *TransportError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: request timed out after %s (%d attempt(s))", e.Path, e.Timeout, e.Attempts)
	}
	return fmt.Sprintf("%s: request failed after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Transient() bool { return true }

// SchemaError reports a response body that does not have the expected shape.
type SchemaError struct {
	Path   string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid response: %s", e.Path, strings.Join(e.Issues, "; "))
}

func (e *SchemaError) Transient() bool { return false }

// IsTransient reports whether err was caused by a failure worth retrying.
// Errors returned by Client.Do have already exhausted their retries.
func IsTransient(err error) bool {
	var t interface{ Transient() bool }
	return errors.As(err, &t) && t.Transient()
}
