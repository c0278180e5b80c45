package bridge

import (
	"log/slog"
	"time"

	"github.com/viant/omnibar/navigator"
)

type Option func(*Bridge)

// WithURL sets the identity frame URL and the origin its replies must come from.
func WithURL(URL, origin string) Option {
	return func(b *Bridge) {
		b.url = URL
		b.origin = origin
	}
}

// WithNavigator sets the navigator used for sign-in and error redirects.
func WithNavigator(nav navigator.Navigator) Option {
	return func(b *Bridge) {
		b.navigator = nav
	}
}

// WithTimeout sets how long a request (and the frame ready handshake) may take.
func WithTimeout(timeout time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = timeout
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}
