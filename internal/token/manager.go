// Package token owns the access credential used for outbound offer calls.
package token

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/product-catalogue-service/internal/obs"
)

// Authenticator obtains a fresh access token from the partner service.
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

// Manager holds the current access token. The refresh loop is the only
// writer; any number of goroutines may read concurrently. A failed refresh
// leaves the previous token live.
type Manager struct {
	auth     Authenticator
	interval time.Duration
	timeout  time.Duration

	mu    sync.RWMutex
	token string
}

func NewManager(auth Authenticator, interval, timeout time.Duration) *Manager {
	return &Manager{auth: auth, interval: interval, timeout: timeout}
}

// Current returns the latest committed token. It never performs network I/O
// and is safe to call while a refresh is in flight.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Refresh obtains a new token and installs it atomically. On failure the
// existing token is left unchanged and the error is returned; a stale token
// surfaces downstream as fetch errors until the next successful refresh.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	tok, err := m.auth.Authenticate(cctx)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()
	return tok, nil
}

// Run refreshes the token on a fixed interval until ctx is cancelled. The
// partner does not expose token expiry, so the wall-clock interval is the
// only trigger.
func (m *Manager) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := m.Refresh(ctx); err != nil {
				obs.Logger.Warn("token_refresh_failed", "error", err)
				continue
			}
			obs.Logger.Info("token_refreshed")
		}
	}
}
