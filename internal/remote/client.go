package remote

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError represents a non-2xx response from a remote store.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote store error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote store error (%d)", e.Status)
}

// NormalizeBaseURL normalizes a remote base URL and ensures it has a
// scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("base url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("base url must include scheme (https://)")
	}
	return strings.TrimRight(value, "/"), nil
}

// newHTTPClient returns the shared client configuration for all
// transports. Each network attempt is bounded; there is no in-request
// retry.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}
