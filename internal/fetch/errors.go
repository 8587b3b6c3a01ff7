package fetch

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted wraps the last error after max_retries attempts.
var ErrRetriesExhausted = errors.New("fetch: retries exhausted")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL  string
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: http status %d", e.URL, e.Code)
}

// retryableStatus reports whether a status code warrants a retry.
// 429 and the transient 5xx family retry; every other non-2xx status is a
// permanent per-request failure.
func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
