package omnibar

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/omnibar/auth/token"
	"github.com/viant/omnibar/bridge"
	"github.com/viant/omnibar/message"
	"github.com/viant/omnibar/navigator"
	"github.com/viant/omnibar/session"
	"github.com/viant/omnibar/settings"
	"github.com/viant/omnibar/transport"
	"github.com/viant/omnibar/widget"
	"gopkg.in/yaml.v3"
)

// Config defines the host configuration.
type Config struct {
	// Origin and Location describe the host page.
	Origin        string `yaml:"origin" json:"origin,omitempty"`
	Location      string `yaml:"location" json:"location,omitempty"`
	TrustedDomain string `yaml:"trustedDomain" json:"trustedDomain,omitempty"`
	// Mock makes every token lookup return a fixed token.
	Mock bool `yaml:"mock,omitempty" json:"mock,omitempty"`
	// TokenStoreURL persists tokens at an afs URL when set.
	TokenStoreURL string          `yaml:"tokenStoreURL,omitempty" json:"tokenStoreURL,omitempty"`
	Identity      *IdentityConfig `yaml:"identity" json:"identity,omitempty"`
	Redirect      *RedirectConfig `yaml:"redirect" json:"redirect,omitempty"`
	Session       *SessionConfig  `yaml:"session" json:"session,omitempty"`
	Settings      *SettingsConfig `yaml:"settings" json:"settings,omitempty"`
	Widgets       *WidgetsConfig  `yaml:"widgets" json:"widgets,omitempty"`
}

// IdentityConfig defines identity service endpoints.
type IdentityConfig struct {
	TokenURL      string        `yaml:"tokenURL" json:"tokenURL,omitempty"`
	CSRFURL       string        `yaml:"csrfURL" json:"csrfURL,omitempty"`
	SessionURL    string        `yaml:"sessionURL" json:"sessionURL,omitempty"`
	BridgeURL     string        `yaml:"bridgeURL" json:"bridgeURL,omitempty"`
	BridgeOrigin  string        `yaml:"bridgeOrigin" json:"bridgeOrigin,omitempty"`
	BridgeTimeout time.Duration `yaml:"bridgeTimeout" json:"bridgeTimeout,omitempty"`
	WatcherURL    string        `yaml:"watcherURL" json:"watcherURL,omitempty"`
	WatcherOrigin string        `yaml:"watcherOrigin" json:"watcherOrigin,omitempty"`
}

// RedirectConfig defines full-page redirect targets.
type RedirectConfig struct {
	SignInURL  string `yaml:"signInURL" json:"signInURL,omitempty"`
	SignOutURL string `yaml:"signOutURL" json:"signOutURL,omitempty"`
	ErrorURL   string `yaml:"errorURL" json:"errorURL,omitempty"`
}

// SessionConfig defines session tracking timings.
type SessionConfig struct {
	Interval                 time.Duration `yaml:"interval" json:"interval,omitempty"`
	InactivityPromptDuration time.Duration `yaml:"inactivityPromptDuration" json:"inactivityPromptDuration,omitempty"`
	MaxSessionAge            time.Duration `yaml:"maxSessionAge" json:"maxSessionAge,omitempty"`
	MinRenewalAge            time.Duration `yaml:"minRenewalAge" json:"minRenewalAge,omitempty"`
	RenewRetryInterval       time.Duration `yaml:"renewRetryInterval" json:"renewRetryInterval,omitempty"`
	LegacyKeepAliveURL       string        `yaml:"legacyKeepAliveURL,omitempty" json:"legacyKeepAliveURL,omitempty"`
}

// SettingsConfig defines where user settings live.
type SettingsConfig struct {
	LocalURL  string        `yaml:"localURL" json:"localURL,omitempty"`
	RemoteURL string        `yaml:"remoteURL" json:"remoteURL,omitempty"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout,omitempty"`
	Debounce  time.Duration `yaml:"debounce" json:"debounce,omitempty"`
}

// WidgetsConfig defines where widgets are served from.
type WidgetsConfig struct {
	Origin        string `yaml:"origin" json:"origin,omitempty"`
	OmnibarURL    string `yaml:"omnibarURL" json:"omnibarURL,omitempty"`
	VerticalURL   string `yaml:"verticalURL" json:"verticalURL,omitempty"`
	ToastURL      string `yaml:"toastURL" json:"toastURL,omitempty"`
	WelcomeURL    string `yaml:"welcomeURL" json:"welcomeURL,omitempty"`
	InactivityURL string `yaml:"inactivityURL" json:"inactivityURL,omitempty"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		Origin:        "https://app.blackbaud.com",
		Location:      "https://app.blackbaud.com/",
		TrustedDomain: token.DefaultTrustedDomain,
		Identity: &IdentityConfig{
			TokenURL:      token.DefaultTokenURL,
			CSRFURL:       transport.DefaultCSRFURL,
			SessionURL:    session.DefaultServiceURL,
			BridgeURL:     bridge.DefaultURL,
			BridgeOrigin:  bridge.DefaultOrigin,
			BridgeTimeout: bridge.DefaultTimeout,
			WatcherURL:    session.DefaultWatcherURL,
			WatcherOrigin: session.DefaultWatcherOrigin,
		},
		Redirect: &RedirectConfig{
			SignInURL:  navigator.DefaultSignInURL,
			SignOutURL: navigator.DefaultSignOutURL,
			ErrorURL:   navigator.DefaultErrorURL,
		},
		Session: &SessionConfig{
			Interval:                 session.DefaultInterval,
			InactivityPromptDuration: session.DefaultInactivityPromptDuration,
			MaxSessionAge:            session.DefaultMaxSessionAge,
			MinRenewalAge:            session.DefaultMinRenewalAge,
			RenewRetryInterval:       session.DefaultRenewRetryInterval,
		},
		Settings: &SettingsConfig{
			LocalURL:  "mem://localhost/omnibar/user-settings.json",
			RemoteURL: settings.DefaultRemoteURL,
			Timeout:   settings.DefaultTimeout,
			Debounce:  settings.DefaultDebounce,
		},
		Widgets: &WidgetsConfig{
			Origin:        message.DefaultTrustedOrigin,
			OmnibarURL:    widget.DefaultOmnibarURL,
			VerticalURL:   widget.DefaultVerticalURL,
			ToastURL:      widget.DefaultToastURL,
			WelcomeURL:    widget.DefaultWelcomeURL,
			InactivityURL: widget.DefaultInactivityURL,
		},
	}
}

// LoadConfig reads YAML config at URL over the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	ret.Init()
	return ret, nil
}

// Init fills unset sections with defaults.
func (c *Config) Init() {
	defaults := DefaultConfig()
	if c.Origin == "" {
		c.Origin = defaults.Origin
	}
	if c.Location == "" {
		c.Location = c.Origin + "/"
	}
	if c.TrustedDomain == "" {
		c.TrustedDomain = defaults.TrustedDomain
	}
	if c.Identity == nil {
		c.Identity = defaults.Identity
	}
	if c.Redirect == nil {
		c.Redirect = defaults.Redirect
	}
	if c.Session == nil {
		c.Session = defaults.Session
	}
	if c.Settings == nil {
		c.Settings = defaults.Settings
	}
	if c.Widgets == nil {
		c.Widgets = defaults.Widgets
	}
}

func (c *Config) urls() navigator.URLs {
	return navigator.URLs{SignInURL: c.Redirect.SignInURL, SignOutURL: c.Redirect.SignOutURL, ErrorURL: c.Redirect.ErrorURL}
}
