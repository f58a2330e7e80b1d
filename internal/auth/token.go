// Package auth manages the session token attached to console API requests.
// Obtaining the token (login) is an external collaborator's job; here it is
// an opaque value.
package auth

import (
	"context"
	"errors"
	"sync"
)

// Static errors for err113 compliance.
var (
	ErrNoToken = errors.New("no session token set")
)

// TokenManager supplies the session token for outgoing requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(token string)
}

// StaticTokenManager holds a session token handed over by the login
// collaborator. Safe for concurrent use: the CLI refreshes the token from a
// re-login while requests may be in flight.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a token manager with an initial token,
// which may be empty for unauthenticated probes.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken implements TokenManager.GetToken.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" {
		return "", ErrNoToken
	}

	return m.token, nil
}

// SetToken implements TokenManager.SetToken.
func (m *StaticTokenManager) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}
