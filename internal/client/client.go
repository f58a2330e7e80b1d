package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/metagrid-io/console-client/internal/auth"
	"github.com/metagrid-io/console-client/internal/http"
	"github.com/metagrid-io/console-client/pkg/console"
)

// Resource paths of the stock entity kinds.
const (
	PathProviders      = "providers"
	PathAuthenticators = "authenticators"
	PathOSManagers     = "osmanagers"
	PathTransports     = "transports"
	PathNetworks       = "networks"
	PathServicePools   = "servicespools"
	PathMetaPools      = "metapools"
	PathCalendars      = "calendars"
	PathAccounts       = "accounts"
	PathTunnels        = "tunnels"
)

// Client implements the console.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	cache        *console.Cache
	baseURL      string
	logger       console.Logger
	permission   console.Permission

	mu        sync.Mutex
	resources map[string]console.Resource

	// Resource clients
	providers      console.Resource
	authenticators console.Resource
	osManagers     console.Resource
	transports     console.Resource
	networks       console.Resource
	servicePools   console.Resource
	metaPools      console.Resource
	calendars      console.Resource
	accounts       console.Resource
	tunnels        console.Resource
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *console.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.AuthHeader != "" {
		httpOpts = append(httpOpts, http.WithAuthHeader(config.AuthHeader))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return httpOpts
}

// New creates a new console API client.
func New(config *console.Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, console.ErrEndpointRequired
	}

	tokenManager := auth.NewStaticTokenManager(config.Token)

	store, err := console.NewStoreFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache store: %w", err)
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.Endpoint, tokenManager, httpOpts...)

	permission := console.PermissionManagement
	if config.Administrator {
		permission = console.PermissionAll
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		cache:        console.NewCache(store),
		baseURL:      config.Endpoint,
		logger:       config.Logger,
		permission:   permission,
		resources:    make(map[string]console.Resource),
	}

	client.initializeResourceClients()

	return client, nil
}

// NewWithTokenManager creates a console API client with a custom token
// manager, e.g. one backed by an interactive login flow.
func NewWithTokenManager(config *console.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.Endpoint == "" {
		return nil, console.ErrEndpointRequired
	}

	store, err := console.NewStoreFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache store: %w", err)
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.Endpoint, tokenManager, httpOpts...)

	permission := console.PermissionManagement
	if config.Administrator {
		permission = console.PermissionAll
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		cache:        console.NewCache(store),
		baseURL:      config.Endpoint,
		logger:       config.Logger,
		permission:   permission,
		resources:    make(map[string]console.Resource),
	}

	client.initializeResourceClients()

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Resource implements console.Client.Resource.
func (c *Client) Resource(path string) console.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()

	if resource, ok := c.resources[path]; ok {
		return resource
	}

	resource := NewResourceClient(c.httpClient, c.cache, path, c.permission)
	c.resources[path] = resource

	return resource
}

// ResolveFiller implements console.FillerResolver against the server's
// callback endpoint. Parameter values travel as query arguments.
func (c *Client) ResolveFiller(ctx context.Context, callback string, params map[string]string) ([]console.FieldUpdate, error) {
	query := url.Values{}
	for name, value := range params {
		query.Set(name, value)
	}

	resp, err := c.httpClient.Get(ctx, "gui/callback/"+callback, query)
	if err != nil {
		return nil, fmt.Errorf("resolving filler %s: %w", callback, err)
	}

	var updates []console.FieldUpdate

	err = json.Unmarshal(resp.Body, &updates)
	if err != nil {
		return nil, fmt.Errorf("parsing filler %s response: %w", callback, err)
	}

	return updates, nil
}

// Cache implements console.Client.Cache.
func (c *Client) Cache() *console.Cache {
	return c.cache
}

// Resource client accessors

// Providers implements console.Client.Providers.
func (c *Client) Providers() console.Resource {
	return c.providers
}

// Authenticators implements console.Client.Authenticators.
func (c *Client) Authenticators() console.Resource {
	return c.authenticators
}

// OSManagers implements console.Client.OSManagers.
func (c *Client) OSManagers() console.Resource {
	return c.osManagers
}

// Transports implements console.Client.Transports.
func (c *Client) Transports() console.Resource {
	return c.transports
}

// Networks implements console.Client.Networks.
func (c *Client) Networks() console.Resource {
	return c.networks
}

// ServicePools implements console.Client.ServicePools.
func (c *Client) ServicePools() console.Resource {
	return c.servicePools
}

// MetaPools implements console.Client.MetaPools.
func (c *Client) MetaPools() console.Resource {
	return c.metaPools
}

// Calendars implements console.Client.Calendars.
func (c *Client) Calendars() console.Resource {
	return c.calendars
}

// Accounts implements console.Client.Accounts.
func (c *Client) Accounts() console.Resource {
	return c.accounts
}

// Tunnels implements console.Client.Tunnels.
func (c *Client) Tunnels() console.Resource {
	return c.tunnels
}

// GetToken returns the current auth token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// initializeResourceClients initializes the stock entity kind clients. They
// all land in the shared path map, so Resource(PathProviders) and
// Providers() return the same instance.
func (c *Client) initializeResourceClients() {
	c.providers = c.Resource(PathProviders)
	c.authenticators = c.Resource(PathAuthenticators)
	c.osManagers = c.Resource(PathOSManagers)
	c.transports = c.Resource(PathTransports)
	c.networks = c.Resource(PathNetworks)
	c.servicePools = c.Resource(PathServicePools)
	c.metaPools = c.Resource(PathMetaPools)
	c.calendars = c.Resource(PathCalendars)
	c.accounts = c.Resource(PathAccounts)
	c.tunnels = c.Resource(PathTunnels)
}
