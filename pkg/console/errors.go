package console

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the console REST API. Body
// holds the raw response body: the server emits human-readable text there
// and callers are expected to surface it verbatim.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
	Method     string `json:"method"`
	Path       string `json:"path"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrEndpointRequired   = errors.New("endpoint is required")
	ErrMissingID          = errors.New("record has no id")
	ErrCacheMiss          = errors.New("cache miss")
	ErrCacheDisabled      = errors.New("cache disabled")
	ErrUnsupportedStore   = errors.New("unsupported cache store type")
	ErrNATSConfigRequired = errors.New("NATS configuration required for NATS cache store")
	ErrUnknownField       = errors.New("unknown form field")
	ErrFillerCycle        = errors.New("filler bindings form a cycle")
	ErrNoFillerResolver   = errors.New("no filler resolver configured")
	ErrUnknownButton      = errors.New("unknown action button")
	ErrButtonDisabled     = errors.New("action button is disabled")
	ErrNotPolymorphic     = errors.New("resource has no sub-types")
	ErrInvalidPermission  = errors.New("invalid permission level")
)

// IsNotFound checks whether the error is a 404 from the server.
func IsNotFound(err error) bool {
	return hasStatus(err, 404)
}

// IsUnauthorized checks whether the error is a 401 from the server.
func IsUnauthorized(err error) bool {
	return hasStatus(err, 401)
}

// IsForbidden checks whether the error is a 403 from the server.
func IsForbidden(err error) bool {
	return hasStatus(err, 403)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
