package widget

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/viant/omnibar/navigator"
)

type Option func(*Controller)

// WithURL overrides the widget frame URL.
func WithURL(URL string) Option {
	return func(c *Controller) {
		c.definition.Frame.URL = URL
	}
}

// WithOrigin sets the origin the widget is served from.
func WithOrigin(origin string) Option {
	return func(c *Controller) {
		c.origin = origin
	}
}

// WithNavigator sets the navigator.
func WithNavigator(nav navigator.Navigator) Option {
	return func(c *Controller) {
		c.navigator = nav
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithBeforeNavigate sets the navigation veto.
func WithBeforeNavigate(fn func(item NavItem) bool) Option {
	return func(c *Controller) {
		c.hooks.BeforeNavigate = fn
	}
}

// WithSearch enables local search.
func WithSearch(fn func(ctx context.Context, args json.RawMessage) (any, error)) Option {
	return func(c *Controller) {
		c.hooks.Search = fn
	}
}

// WithNotificationRead sets the notification-read handler.
func WithNotificationRead(fn func(notification json.RawMessage)) Option {
	return func(c *Controller) {
		c.hooks.NotificationRead = fn
	}
}

// WithPushNotificationsOpen sets the push-notifications-open handler.
func WithPushNotificationsOpen(fn func()) Option {
	return func(c *Controller) {
		c.hooks.PushNotificationsOpen = fn
	}
}

// WithSessionRenew sets the session-renew handler.
func WithSessionRenew(fn func()) Option {
	return func(c *Controller) {
		c.hooks.SessionRenew = fn
	}
}

// WithMinimized is notified on minimize and maximize.
func WithMinimized(fn func(minimized bool)) Option {
	return func(c *Controller) {
		c.hooks.Minimized = fn
	}
}

// WithEnvironmentSelected replaces the default navigation on a context choice.
func WithEnvironmentSelected(fn func(selected EnvironmentSelected)) Option {
	return func(c *Controller) {
		c.hooks.EnvironmentSelected = fn
	}
}

// WithCancel sets the welcome-cancel handler.
func WithCancel(fn func()) Option {
	return func(c *Controller) {
		c.hooks.Cancel = fn
	}
}
