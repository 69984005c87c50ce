package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from summarizer")

// APIError is a non-success answer from a remote summarizer.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
}

// Temporary reports whether retrying later could succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
