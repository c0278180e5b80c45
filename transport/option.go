package transport

import (
	"log/slog"
	"net/http"

	"github.com/viant/omnibar/navigator"
)

type Option func(*Client)

// WithHTTPClient sets the http client; a client without a cookie jar gets one.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithCSRFURL sets the CSRF handshake endpoint.
func WithCSRFURL(URL string) Option {
	return func(c *Client) {
		c.csrfURL = URL
	}
}

// WithNavigator sets the navigator used for sign-in and error redirects.
func WithNavigator(nav navigator.Navigator) Option {
	return func(c *Client) {
		c.navigator = nav
	}
}

// WithLocation sets the function reporting the current page URL, used as the sign-in return address.
func WithLocation(location func() string) Option {
	return func(c *Client) {
		c.location = location
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
