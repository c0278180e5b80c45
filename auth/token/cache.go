package token

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/auth/store"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// ExpirationGuard is the minimum remaining lifetime of a cached token.
	ExpirationGuard = 60 * time.Second
	// MockToken is returned by every lookup in mock mode.
	MockToken = "mock_access_token_auth-client@blackbaud.com"
)

// Source fetches a fresh token.
type Source interface {
	GetToken(ctx context.Context, args auth.TokenArgs) (*oauth2.Token, error)
}

// Cache de-duplicates and caches token lookups per key.
type Cache struct {
	source Source
	store  store.Store
	mock   bool
	now    func() time.Time
	logger *slog.Logger
	group  singleflight.Group

	mu         sync.Mutex
	generation int
	inflight   map[string]bool
}

// NewCache creates a Cache fetching from source.
func NewCache(source Source, options ...CacheOption) *Cache {
	ret := &Cache{
		source:   source,
		store:    store.NewMemoryStore(),
		now:      time.Now,
		logger:   slog.Default(),
		inflight: map[string]bool{},
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// SetMock toggles mock mode.
func (c *Cache) SetMock(mock bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mock = mock
}

func (c *Cache) isMock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mock
}

// GetToken returns a token for args; nil args means the default key.
func (c *Cache) GetToken(ctx context.Context, args *auth.TokenArgs) (string, error) {
	if c.isMock() {
		return MockToken, nil
	}
	lookup := auth.Normalize(args)
	key := auth.Key(lookup)
	if !lookup.ForceNewToken {
		if cached, ok := c.store.LookupToken(key); ok && cached.AccessToken != "" && cached.Expiry.Sub(c.now()) > ExpirationGuard {
			return cached.AccessToken, nil
		}
	}
	// the fetch outlives any single waiter; each caller may stop waiting on its own context
	fetchCtx := context.WithoutCancel(ctx)
	result := c.group.DoChan(key.String(), func() (interface{}, error) {
		return c.fetch(fetchCtx, key, lookup)
	})
	select {
	case outcome := <-result:
		if outcome.Err != nil {
			return "", outcome.Err
		}
		return outcome.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Cache) fetch(ctx context.Context, key store.TokenKey, args auth.TokenArgs) (string, error) {
	c.mu.Lock()
	generation := c.generation
	c.inflight[key.String()] = true
	c.mu.Unlock()

	token, err := c.source.GetToken(ctx, args)

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		// cleared while in flight: hand the outcome to current waiters but keep it out of the store
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	}
	delete(c.inflight, key.String())
	if err != nil {
		c.logger.Debug("token lookup failed", "key", key.String(), "code", auth.CodeOf(err).String())
		return "", err
	}
	if serr := c.store.AddToken(key, token); serr != nil {
		c.logger.Warn("failed to store token", "key", key.String(), "error", serr)
	}
	return token.AccessToken, nil
}

// ClearAll forgets every cached token and in-flight lookup.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for key := range c.inflight {
		c.group.Forget(key)
	}
	c.inflight = map[string]bool{}
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear token store", "error", err)
	}
}
