package token

import (
	"log/slog"
	"time"

	"github.com/viant/omnibar/auth/store"
)

type CacheOption func(*Cache)

// WithStore sets the token store.
func WithStore(s store.Store) CacheOption {
	return func(c *Cache) {
		c.store = s
	}
}

// WithMock makes every lookup return MockToken without touching the network.
func WithMock(mock bool) CacheOption {
	return func(c *Cache) {
		c.mock = mock
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithCacheLogger sets logger
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

type ProviderOption func(*Provider)

// WithTrustedDomain sets the first-party domain served directly.
func WithTrustedDomain(domain string) ProviderOption {
	return func(p *Provider) {
		p.trustedDomain = domain
	}
}

// WithTokenURL sets the identity token endpoint.
func WithTokenURL(URL string) ProviderOption {
	return func(p *Provider) {
		p.tokenURL = URL
	}
}

// WithBridge sets the cross-domain bridge.
func WithBridge(b Bridge) ProviderOption {
	return func(p *Provider) {
		p.bridge = b
	}
}

// WithProviderClock sets the time source.
func WithProviderClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}
