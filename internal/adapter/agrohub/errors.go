package agrohub

import (
	"errors"
	"fmt"
	"time"
)

// ErrRegionUnavailable reports that no upstream region matches the configured
// deployment region. Callers treat this as "feature unavailable for this
// deployment", not as a transient failure.
var ErrRegionUnavailable = errors.New("no region matches the configured deployment region")

// UpstreamError is a non-2xx response from the data service. Status and body
// are carried to aid diagnosis.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d: %s", e.StatusCode, e.Body)
}

// TimeoutError reports that no response arrived within the configured window.
// It is surfaced distinctly from UpstreamError so callers can tell "service
// is slow" apart from "service is down".
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream timeout: %s gave no response within %s", e.Endpoint, e.Timeout)
}
