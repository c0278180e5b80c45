package session

import (
	"log/slog"
	"time"

	"github.com/viant/omnibar/navigator"
)

type Option func(*Monitor)

// WithNavigator sets the navigator used for sign-in and sign-out redirects.
func WithNavigator(nav navigator.Navigator) Option {
	return func(m *Monitor) {
		m.navigator = nav
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithInterval sets the polling interval.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		m.interval = interval
	}
}

// WithInactivityPromptDuration sets how long before expiry the prompt shows.
func WithInactivityPromptDuration(duration time.Duration) Option {
	return func(m *Monitor) {
		m.promptDuration = duration
	}
}

// WithSessionAge sets the server session lifetime and the minimum session age
// before activity renews it.
func WithSessionAge(maxSessionAge, minRenewalAge time.Duration) Option {
	return func(m *Monitor) {
		m.maxSessionAge = maxSessionAge
		m.minRenewalAge = minRenewalAge
	}
}

// WithRenewRetryInterval sets the minimum time between renew attempts.
func WithRenewRetryInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		m.renewRetry = interval
	}
}

// WithWatcher sets the session watcher frame URL and the origin it posts from.
func WithWatcher(URL, origin string) Option {
	return func(m *Monitor) {
		m.watcherURL = URL
		m.watcherOrigin = origin
	}
}
