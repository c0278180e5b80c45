package omnibar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/auth/store"
	"github.com/viant/omnibar/auth/token"
	"github.com/viant/omnibar/bridge"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/frame/memory"
	"github.com/viant/omnibar/navigator"
	"github.com/viant/omnibar/session"
	"github.com/viant/omnibar/settings"
	"github.com/viant/omnibar/transport"
	"github.com/viant/omnibar/widget"
)

// Host owns every host side component of one page.
type Host struct {
	Config    *Config
	Document  frame.Document
	Navigator navigator.Navigator
	Store     store.Store
	Transport *transport.Client
	Bridge    *bridge.Bridge
	Provider  *token.Provider
	Tokens    *token.Cache
	Session   *session.Monitor
	Settings  *settings.Service

	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	omnibars []*widget.Omnibar
	widgets  []interface{ Destroy() }
	prompt   *widget.InactivityPrompt
	cancel   context.CancelFunc
}

// New creates a Host.
func New(ctx context.Context, options ...Option) (*Host, error) {
	ret := &Host{logger: slog.Default()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.Config == nil {
		ret.Config = DefaultConfig()
	}
	ret.Config.Init()
	config := ret.Config
	if ret.Document == nil {
		ret.Document = memory.New(config.Origin, config.Location)
	}
	if ret.Navigator == nil {
		ret.Navigator = navigator.New(config.urls(), func(URL string) {
			ret.logger.Info("navigate", "url", URL)
		})
	}
	if ret.Store == nil {
		ret.Store = store.NewMemoryStore()
		if config.TokenStoreURL != "" {
			fileStore, err := store.NewFileStore(ctx, config.TokenStoreURL)
			if err != nil {
				return nil, fmt.Errorf("failed to open token store: %w", err)
			}
			ret.Store = fileStore
		}
	}

	transportOptions := []transport.Option{
		transport.WithCSRFURL(config.Identity.CSRFURL),
		transport.WithNavigator(ret.Navigator),
		transport.WithLocation(ret.Document.Location),
		transport.WithLogger(ret.logger),
	}
	if ret.httpClient != nil {
		transportOptions = append(transportOptions, transport.WithHTTPClient(ret.httpClient))
	}
	var err error
	if ret.Transport, err = transport.New(transportOptions...); err != nil {
		return nil, err
	}
	ret.Bridge = bridge.New(ret.Document,
		bridge.WithURL(config.Identity.BridgeURL, config.Identity.BridgeOrigin),
		bridge.WithTimeout(config.Identity.BridgeTimeout),
		bridge.WithNavigator(ret.Navigator),
		bridge.WithLogger(ret.logger),
	)
	ret.Provider = token.NewProvider(ret.Transport, ret.Document.Origin,
		token.WithTrustedDomain(config.TrustedDomain),
		token.WithTokenURL(config.Identity.TokenURL),
		token.WithBridge(ret.Bridge),
	)
	ret.Tokens = token.NewCache(ret.Provider,
		token.WithStore(ret.Store),
		token.WithMock(config.Mock),
		token.WithCacheLogger(ret.logger),
	)
	ret.Session = session.New(ret.Document, session.NewService(ret.Transport, config.Identity.SessionURL),
		session.WithNavigator(ret.Navigator),
		session.WithLogger(ret.logger),
		session.WithInterval(config.Session.Interval),
		session.WithInactivityPromptDuration(config.Session.InactivityPromptDuration),
		session.WithSessionAge(config.Session.MaxSessionAge, config.Session.MinRenewalAge),
		session.WithRenewRetryInterval(config.Session.RenewRetryInterval),
		session.WithWatcher(config.Identity.WatcherURL, config.Identity.WatcherOrigin),
	)
	ret.Settings = settings.NewService(ret.Tokens,
		settings.NewLocal(config.Settings.LocalURL),
		settings.NewRemote(ret.Transport, config.Settings.RemoteURL, config.Settings.Timeout, config.Settings.Debounce, ret.logger),
	)
	return ret, nil
}

// GetToken returns a cached or fresh access token.
func (h *Host) GetToken(ctx context.Context, args *auth.TokenArgs) (string, error) {
	return h.Tokens.GetToken(ctx, args)
}

// ClearTokenCache forgets every cached token.
func (h *Host) ClearTokenCache() {
	h.Tokens.ClearAll()
}

func (h *Host) widgetOptions(URL string, options []widget.Option) []widget.Option {
	ret := []widget.Option{
		widget.WithURL(URL),
		widget.WithOrigin(h.Config.Widgets.Origin),
		widget.WithNavigator(h.Navigator),
		widget.WithLogger(h.logger),
	}
	return append(ret, options...)
}

func (h *Host) track(w interface{ Destroy() }) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.widgets = append(h.widgets, w)
	if omnibar, ok := w.(*widget.Omnibar); ok {
		h.omnibars = append(h.omnibars, omnibar)
	}
}

// Omnibar creates the horizontal omnibar; call Load to show it.
func (h *Host) Omnibar(config widget.NavConfig, options ...widget.Option) *widget.Omnibar {
	ret := widget.NewOmnibar(h.Document, h.Tokens, config, h.widgetOptions(h.Config.Widgets.OmnibarURL, options)...)
	h.track(ret)
	return ret
}

// VerticalOmnibar creates the vertical omnibar; call Load to show it.
func (h *Host) VerticalOmnibar(config widget.NavConfig, options ...widget.Option) *widget.Omnibar {
	ret := widget.NewVerticalOmnibar(h.Document, h.Tokens, config, h.widgetOptions(h.Config.Widgets.VerticalURL, options)...)
	h.track(ret)
	return ret
}

// ToastContainer creates the notification toast container.
func (h *Host) ToastContainer(options ...widget.Option) *widget.ToastContainer {
	ret := widget.NewToastContainer(h.Document, h.Tokens, h.widgetOptions(h.Config.Widgets.ToastURL, options)...)
	h.track(ret)
	return ret
}

// Welcome creates the welcome context picker.
func (h *Host) Welcome(args widget.ContextArgs, options ...widget.Option) *widget.Controller {
	ret := widget.NewWelcome(h.Document, h.Tokens, args, h.widgetOptions(h.Config.Widgets.WelcomeURL, options)...)
	h.track(ret)
	return ret
}

// StartTracking starts the session monitor. The inactivity prompt is shown
// and closed by the host unless options supply their own callbacks.
func (h *Host) StartTracking(ctx context.Context, options session.Options) error {
	if options.LegacyKeepAliveURL == "" {
		options.LegacyKeepAliveURL = h.Config.Session.LegacyKeepAliveURL
	}
	if options.ShowInactivityPrompt == nil {
		options.ShowInactivityPrompt = func(expiration time.Time) { h.showInactivityPrompt(ctx, expiration) }
	}
	if options.CloseInactivityPrompt == nil {
		options.CloseInactivityPrompt = h.closeInactivityPrompt
	}
	return h.Session.Start(ctx, options)
}

// StopTracking stops the session monitor and closes any prompt.
func (h *Host) StopTracking() {
	h.Session.Stop()
	h.closeInactivityPrompt()
}

func (h *Host) showInactivityPrompt(ctx context.Context, expiration time.Time) {
	h.mu.Lock()
	if h.prompt != nil {
		prompt := h.prompt
		h.mu.Unlock()
		_ = prompt.SetExpiration(expiration)
		return
	}
	prompt := widget.NewInactivityPrompt(h.Document, h.Tokens, expiration, h.widgetOptions(h.Config.Widgets.InactivityURL, []widget.Option{
		widget.WithSessionRenew(func() {
			if err := h.Session.Renew(ctx); err != nil {
				h.logger.Warn("session renewal failed", "error", err)
			}
			h.closeInactivityPrompt()
		}),
	})...)
	loadCtx, cancel := context.WithCancel(ctx)
	h.prompt, h.cancel = prompt, cancel
	h.mu.Unlock()
	go func() {
		if err := prompt.Load(loadCtx); err != nil {
			h.logger.Debug("inactivity prompt did not load", "error", err)
		}
	}()
}

func (h *Host) closeInactivityPrompt() {
	h.mu.Lock()
	prompt, cancel := h.prompt, h.cancel
	h.prompt, h.cancel = nil, nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if prompt != nil {
		prompt.Destroy()
	}
}

// NotifyLocationChanged reports a client-side navigation to URL.
func (h *Host) NotifyLocationChanged(URL string) {
	h.Session.NotifyLocationChanged(URL)
	h.mu.Lock()
	omnibars := append([]*widget.Omnibar(nil), h.omnibars...)
	h.mu.Unlock()
	for _, omnibar := range omnibars {
		if err := omnibar.NotifyLocationChanged(URL); err != nil {
			h.logger.Debug("failed to notify omnibar", "error", err)
		}
	}
}

// Destroy tears down every component. It is safe to call more than once.
func (h *Host) Destroy() {
	h.StopTracking()
	h.mu.Lock()
	widgets := h.widgets
	h.widgets = nil
	h.omnibars = nil
	h.mu.Unlock()
	for _, w := range widgets {
		w.Destroy()
	}
	h.Bridge.Destroy()
}
