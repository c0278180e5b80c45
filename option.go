package omnibar

import (
	"log/slog"
	"net/http"

	"github.com/viant/omnibar/auth/store"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/navigator"
)

// Option configures a Host.
type Option func(h *Host)

// WithConfig sets the configuration.
func WithConfig(config *Config) Option {
	return func(h *Host) {
		h.Config = config
	}
}

// WithDocument sets the host page.
func WithDocument(doc frame.Document) Option {
	return func(h *Host) {
		h.Document = doc
	}
}

// WithNavigator sets the navigator.
func WithNavigator(nav navigator.Navigator) Option {
	return func(h *Host) {
		h.Navigator = nav
	}
}

// WithTokenStore sets the token store.
func WithTokenStore(s store.Store) Option {
	return func(h *Host) {
		h.Store = s
	}
}

// WithHTTPClient sets the HTTP client used for identity and settings calls.
func WithHTTPClient(client *http.Client) Option {
	return func(h *Host) {
		h.httpClient = client
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}
