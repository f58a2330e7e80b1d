// Package constants holds shared defaults used across the client,
// transport, cache, and CLI layers.
package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as test probes.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled by default: a failed console request
// is terminal until the operator re-triggers it.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between retries when enabled.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between retries when enabled.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultBatchConcurrency limits concurrent requests in a batch
	// operation such as a multi-row delete.
	DefaultBatchConcurrency = 3
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries held by the
	// in-memory cache store per namespace.
	DefaultCacheSize = 256

	// DefaultNATSBucket is the JetStream KV bucket used when none is
	// configured.
	DefaultNATSBucket = "console-cache"
)

// HTTP status codes commonly checked.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400

	// HTTPStatusNotFound represents a missing resource.
	HTTPStatusNotFound = 404

	// HTTPStatusInternalServerError represents server errors.
	HTTPStatusInternalServerError = 500
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for tabular output format.
	FormatTable = "table"
)

// Display formatting.
const (
	// JSONIndentSize controls indentation for JSON/YAML encoders.
	JSONIndentSize = 2

	// TimestampLayout is the layout used when rendering timestamps in
	// CLI tables.
	TimestampLayout = "2006-01-02 15:04:05"
)
