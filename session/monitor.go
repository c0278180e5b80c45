package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
	"github.com/viant/omnibar/navigator"
)

const (
	DefaultInterval                 = time.Second
	DefaultInactivityPromptDuration = 2 * time.Minute
	DefaultMaxSessionAge            = 30 * time.Minute
	DefaultMinRenewalAge            = 5 * time.Minute
	DefaultRenewRetryInterval       = time.Minute

	DefaultWatcherURL    = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com/session/session-watcher"
	DefaultWatcherOrigin = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com"
)

// Client reads and renews the server-side session.
type Client interface {
	TTLSource
	Renew(ctx context.Context) error
}

// Options configure one tracking run.
type Options struct {
	AllowAnonymous bool
	// LegacyKeepAliveURL enables the legacy keep-alive frame when set.
	LegacyKeepAliveURL string
	// RefreshUser is called when another tab changes the signed-in identity.
	RefreshUser           func()
	ShowInactivityPrompt  func(expiration time.Time)
	CloseInactivityPrompt func()
}

// State is the activity state while tracking; the zero value when stopped.
type State struct {
	LastActivity   time.Time
	LastRenewal    time.Time
	ShowingPrompt  bool
	SessionID      string
	RefreshID      string
	AllowAnonymous bool
}

// Change is the session watcher broadcast payload.
type Change struct {
	SessionID string `json:"sessionId"`
	RefreshID string `json:"refreshId"`
}

// Monitor tracks user activity against the server-side session.
type Monitor struct {
	doc            frame.Document
	client         Client
	cache          *ExpirationCache
	navigator      navigator.Navigator
	logger         *slog.Logger
	now            func() time.Time
	interval       time.Duration
	promptDuration time.Duration
	maxSessionAge  time.Duration
	minRenewalAge  time.Duration
	renewRetry     time.Duration
	watcherURL     string
	watcherOrigin  string

	mu               sync.Mutex
	tracking         bool
	state            State
	options          Options
	sessionSeen      bool
	lastRenewAttempt time.Time
	mouseSeen        bool
	mouseX, mouseY   int
	legacyExpiration *time.Time
	location         string
	removeInputs     []func()
	watcher          *channel
	keepAlive        *channel
	stop             chan struct{}
}

// New creates a stopped Monitor.
func New(doc frame.Document, client Client, options ...Option) *Monitor {
	ret := &Monitor{
		doc:            doc,
		client:         client,
		logger:         slog.Default(),
		now:            time.Now,
		interval:       DefaultInterval,
		promptDuration: DefaultInactivityPromptDuration,
		maxSessionAge:  DefaultMaxSessionAge,
		minRenewalAge:  DefaultMinRenewalAge,
		renewRetry:     DefaultRenewRetryInterval,
		watcherURL:     DefaultWatcherURL,
		watcherOrigin:  DefaultWatcherOrigin,
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.cache = NewExpirationCache(client, ret.now)
	return ret
}

// Start begins tracking; ctx bounds the polling loop. Starting a running
// monitor with a different anonymous flag restarts it from scratch.
func (m *Monitor) Start(ctx context.Context, options Options) error {
	m.mu.Lock()
	if m.tracking {
		if m.state.AllowAnonymous == options.AllowAnonymous {
			m.options = options
			m.mu.Unlock()
			return nil
		}
		m.stopLocked()
	}
	var keepAliveOrigin string
	if options.LegacyKeepAliveURL != "" {
		origin, err := originOf(options.LegacyKeepAliveURL)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		keepAliveOrigin = origin
	}
	now := m.now()
	m.tracking = true
	m.options = options
	m.state = State{AllowAnonymous: options.AllowAnonymous, LastActivity: now}
	m.removeInputs = []func(){
		m.doc.AddInputListener(frame.KeyPress, m.onInput),
		m.doc.AddInputListener(frame.MouseMove, m.onInput),
	}
	m.watcher = newChannel(m.doc, frame.Spec{Role: frame.RoleSessionWatcher, URL: m.watcherURL, Title: "Session watcher", Hidden: true}, m.watcherOrigin, m.onSessionChange)
	if keepAliveOrigin != "" {
		m.keepAlive = newChannel(m.doc, frame.Spec{Role: frame.RoleKeepAlive, URL: options.LegacyKeepAliveURL, Title: "Session keep-alive", Hidden: true}, keepAliveOrigin, m.onKeepAlive)
	}
	watcher, keepAlive := m.watcher, m.keepAlive
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	// frames are opened unlocked: a frame may answer while it is being created
	if err := watcher.open(); err != nil {
		m.Stop()
		return fmt.Errorf("failed to open session watcher: %w", err)
	}
	if keepAlive != nil {
		if err := keepAlive.open(); err != nil {
			m.Stop()
			return fmt.Errorf("failed to open legacy keep-alive: %w", err)
		}
	}
	if !options.AllowAnonymous {
		if err := m.renew(ctx, true); err != nil {
			m.logger.Warn("initial session renewal failed", "error", err)
		}
	}
	go m.poll(ctx, stop)
	return nil
}

func (m *Monitor) poll(ctx context.Context, stop chan struct{}) {
	if m.interval <= 0 {
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Tick(ctx); err != nil {
				m.logger.Debug("session poll failed", "error", err)
			}
		}
	}
}

// Tick polls the session TTL once and acts on it.
func (m *Monitor) Tick(ctx context.Context) error {
	m.mu.Lock()
	if !m.tracking {
		m.mu.Unlock()
		return nil
	}
	snapshot := m.state
	legacy := m.legacyExpiration
	m.mu.Unlock()

	expiration, err := m.cache.Expiration(ctx, snapshot.RefreshID, snapshot.AllowAnonymous, legacy)
	if err != nil {
		return err
	}
	Process(Args{
		Now:                      m.now(),
		ExpirationDate:           expiration,
		LastActivity:             snapshot.LastActivity,
		AllowAnonymous:           snapshot.AllowAnonymous,
		PromptShown:              snapshot.ShowingPrompt,
		InactivityPromptDuration: m.promptDuration,
		MaxSessionAge:            m.maxSessionAge,
		MinRenewalAge:            m.minRenewalAge,
		Callbacks: Callbacks{
			RedirectForInactivity: m.redirectForInactivity,
			ShowInactivityPrompt:  func() { m.showPrompt(*expiration) },
			CloseInactivityPrompt: m.closePrompt,
			RenewSession: func() {
				if err := m.renew(ctx, false); err != nil {
					m.logger.Debug("session renewal failed", "error", err)
				}
			},
		},
	})
	return nil
}

// Renew records activity, closes the inactivity prompt and renews the
// session now, as when the user dismisses the prompt.
func (m *Monitor) Renew(ctx context.Context) error {
	m.mu.Lock()
	if m.tracking {
		m.state.LastActivity = m.now()
	}
	m.mu.Unlock()
	m.closePrompt()
	if err := m.renew(ctx, true); err != nil {
		return err
	}
	m.cache.Invalidate()
	return nil
}

func (m *Monitor) renew(ctx context.Context, force bool) error {
	m.mu.Lock()
	if !m.tracking {
		m.mu.Unlock()
		return nil
	}
	now := m.now()
	if !force && !m.lastRenewAttempt.IsZero() && now.Sub(m.lastRenewAttempt) < m.renewRetry {
		m.mu.Unlock()
		return nil
	}
	m.lastRenewAttempt = now
	keepAlive := m.keepAlive
	m.mu.Unlock()

	err := m.client.Renew(ctx)
	if keepAlive != nil {
		if perr := keepAlive.post(messageRenew); perr != nil {
			m.logger.Debug("legacy keep-alive renew failed", "error", perr)
		}
	}
	if err != nil {
		return err
	}
	m.mu.Lock()
	if m.tracking {
		m.state.LastRenewal = now
	}
	m.mu.Unlock()
	return nil
}

func (m *Monitor) redirectForInactivity() {
	location := m.currentLocation()
	m.Stop()
	m.logger.Info("session expired, signing out")
	if m.navigator != nil {
		m.navigator.RedirectToSignOut(location, true)
	}
}

func (m *Monitor) showPrompt(expiration time.Time) {
	m.mu.Lock()
	if !m.tracking || m.state.ShowingPrompt {
		m.mu.Unlock()
		return
	}
	m.state.ShowingPrompt = true
	show := m.options.ShowInactivityPrompt
	m.mu.Unlock()
	if show != nil {
		show(expiration)
	}
}

func (m *Monitor) closePrompt() {
	m.mu.Lock()
	if !m.tracking || !m.state.ShowingPrompt {
		m.mu.Unlock()
		return
	}
	m.state.ShowingPrompt = false
	closePrompt := m.options.CloseInactivityPrompt
	m.mu.Unlock()
	if closePrompt != nil {
		closePrompt()
	}
}

func (m *Monitor) onInput(event frame.InputEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tracking {
		return
	}
	if event.Kind == frame.MouseMove {
		// some browsers fire mousemove without motion
		if m.mouseSeen && event.X == m.mouseX && event.Y == m.mouseY {
			return
		}
		m.mouseSeen = true
		m.mouseX, m.mouseY = event.X, event.Y
	}
	m.state.LastActivity = m.now()
}

func (m *Monitor) onSessionChange(envelope *message.Envelope) {
	if envelope.MessageType != messageSessionChange {
		return
	}
	var payload struct {
		Message Change `json:"message"`
	}
	if err := envelope.Decode(&payload); err != nil {
		return
	}
	change := payload.Message

	m.mu.Lock()
	if !m.tracking {
		m.mu.Unlock()
		return
	}
	previous, seen := m.state.SessionID, m.sessionSeen
	m.sessionSeen = true
	m.state.SessionID = change.SessionID
	m.state.RefreshID = change.RefreshID
	anonymous := m.state.AllowAnonymous
	refreshUser := m.options.RefreshUser
	location := m.currentLocationLocked()
	m.mu.Unlock()

	if !seen || previous == change.SessionID {
		return
	}
	if previous != "" && change.SessionID == "" && !anonymous && m.navigator != nil {
		m.logger.Info("signed out in another tab")
		m.navigator.RedirectToSignIn(location, nil)
	}
	if refreshUser != nil {
		refreshUser()
	}
}

func (m *Monitor) onKeepAlive(envelope *message.Envelope) {
	if envelope.MessageType != messageTTL {
		return
	}
	var payload struct {
		Value float64 `json:"value"`
	}
	if err := envelope.Decode(&payload); err != nil || payload.Value <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tracking {
		return
	}
	expiration := m.now().Add(time.Duration(payload.Value) * time.Millisecond)
	m.legacyExpiration = &expiration
}

// NotifyLocationChanged records a client-side navigation; redirects return
// the user to URL.
func (m *Monitor) NotifyLocationChanged(URL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = URL
}

func (m *Monitor) currentLocation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocationLocked()
}

func (m *Monitor) currentLocationLocked() string {
	if m.location != "" {
		return m.location
	}
	return m.doc.Location()
}

// Tracking reports whether the monitor is started.
func (m *Monitor) Tracking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracking
}

// State returns a copy of the activity state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stop detaches everything and resets the state. Calling it again is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Monitor) stopLocked() {
	for _, remove := range m.removeInputs {
		remove()
	}
	if m.stop != nil {
		close(m.stop)
	}
	if m.watcher != nil {
		m.watcher.close()
	}
	if m.keepAlive != nil {
		m.keepAlive.close()
	}
	m.tracking = false
	m.state = State{}
	m.options = Options{}
	m.sessionSeen = false
	m.lastRenewAttempt = time.Time{}
	m.mouseSeen = false
	m.mouseX, m.mouseY = 0, 0
	m.legacyExpiration = nil
	m.removeInputs = nil
	m.watcher = nil
	m.keepAlive = nil
	m.stop = nil
	m.cache.Invalidate()
}
