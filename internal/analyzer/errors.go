package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned before any upstream call when no credential is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not configured")

// UpstreamError reports a failed call to the model service. StatusCode is
// zero when the request never got an HTTP response.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		body := strings.TrimSpace(e.Body)
		if body == "" {
			return fmt.Sprintf("upstream error %d", e.StatusCode)
		}
		return fmt.Sprintf("upstream error %d: %s", e.StatusCode, body)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
