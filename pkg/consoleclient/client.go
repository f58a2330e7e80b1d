// Package consoleclient provides the main entry point for creating console API clients
package consoleclient

import (
	"fmt"
	"strings"

	"github.com/metagrid-io/console-client/internal/client"
	"github.com/metagrid-io/console-client/pkg/console"
)

// New creates a new console API client from a configuration.
func New(config *console.Config) (console.Client, error) {
	if config == nil {
		return nil, console.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, console.ErrEndpointRequired
	}

	// Normalize the REST endpoint
	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	config.Endpoint = endpoint

	// Use the internal client implementation
	apiClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// NewWithEndpoint creates a new client with just an endpoint (no auth).
func NewWithEndpoint(endpoint string) (console.Client, error) {
	return New(&console.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a new client with an endpoint and auth token.
func NewWithToken(endpoint, token string) (console.Client, error) {
	return New(&console.Config{
		Endpoint: endpoint,
		Token:    token,
	})
}
