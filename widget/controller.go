package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
	"github.com/viant/omnibar/navigator"
)

// ErrNotReady is returned when posting to a widget before its handshake.
var ErrNotReady = errors.New("widget is not ready")

// Tokens supplies tokens to widgets.
type Tokens interface {
	GetToken(ctx context.Context, args *auth.TokenArgs) (string, error)
}

// Outbound is a host to widget message.
type Outbound struct {
	Type    string
	Payload any
}

// Definition describes one widget kind.
type Definition struct {
	Name  string
	Frame frame.Spec
	// Source is the tag the widget stamps on its messages.
	Source string
	// ExpandedClass is toggled by expand and collapse.
	ExpandedClass string
	// MinimizedClass is toggled by minimize and maximize.
	MinimizedClass string
	// Payload returns the messages that follow host-ready.
	Payload func(ctx context.Context, c *Controller) []Outbound
}

// Hooks are host callbacks. Nil hooks are skipped.
type Hooks struct {
	// BeforeNavigate vetoes navigation by returning false.
	BeforeNavigate        func(item NavItem) bool
	Search                func(ctx context.Context, args json.RawMessage) (any, error)
	NotificationRead      func(notification json.RawMessage)
	PushNotificationsOpen func()
	SessionRenew          func()
	Minimized             func(minimized bool)
	EnvironmentSelected   func(selected EnvironmentSelected)
	Cancel                func()
}

// Controller owns one widget frame and its message protocol.
type Controller struct {
	definition Definition
	doc        frame.Document
	tokens     Tokens
	navigator  navigator.Navigator
	hooks      Hooks
	origin     string
	logger     *slog.Logger
	validator  *message.Validator

	mu       sync.Mutex
	frame    *frame.Singleton
	remove   func()
	loaded   chan struct{}
	isLoaded bool
	poster   *message.Poster
	// early records a ready that arrived before the frame window was known
	early bool
}

func newController(doc frame.Document, tokens Tokens, definition Definition, options ...Option) *Controller {
	ret := &Controller{
		definition: definition,
		doc:        doc,
		tokens:     tokens,
		origin:     message.DefaultTrustedOrigin,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.validator = message.NewValidator(ret.definition.Source, ret.origin)
	ret.frame = frame.NewSingleton(doc, ret.definition.Frame)
	ret.logger = ret.logger.With("widget", ret.definition.Name)
	return ret
}

// Load creates the widget frame if needed and waits for its handshake.
func (c *Controller) Load(ctx context.Context) error {
	loaded, err := c.ensure()
	if err != nil {
		return err
	}
	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) ensure() (<-chan struct{}, error) {
	c.mu.Lock()
	if c.remove == nil {
		c.loaded = make(chan struct{})
		c.isLoaded = false
		c.poster = nil
		c.early = false
		c.remove = c.doc.AddMessageListener(c.onMessage)
	}
	loaded := c.loaded
	c.mu.Unlock()

	current, _, err := c.frame.Ensure()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	early := false
	if c.poster == nil && c.loaded == loaded {
		c.poster = &message.Poster{Window: current.ContentWindow(), TargetOrigin: c.origin, Source: message.SourceAuthClient}
		early, c.early = c.early, false
	}
	c.mu.Unlock()
	if early {
		c.onReady()
	}
	return loaded, nil
}

// Loaded reports whether the handshake completed.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoaded
}

// Frame returns the widget frame, or nil before Load or after Destroy.
func (c *Controller) Frame() frame.Frame {
	return c.frame.Current()
}

func (c *Controller) onMessage(event frame.Event) {
	envelope, ok := c.validator.Accept(event)
	if !ok {
		return
	}
	c.handle(Decode(envelope))
}

func (c *Controller) handle(inbound Inbound) {
	switch msg := inbound.(type) {
	case Ready:
		c.onReady()
	case Expand:
		c.setClass(c.definition.ExpandedClass, true)
	case Collapse:
		c.setClass(c.definition.ExpandedClass, false)
	case NavigateURL:
		c.navigate(msg.URL)
	case Navigate:
		if c.hooks.BeforeNavigate != nil && !c.hooks.BeforeNavigate(msg.NavItem) {
			return
		}
		c.navigate(msg.NavItem.URL)
	case GetToken:
		go c.replyToken(msg)
	case Search:
		go c.replySearch(msg)
	case NotificationRead:
		if c.hooks.NotificationRead != nil {
			c.hooks.NotificationRead(msg.Notification)
		}
	case PushNotificationsOpen:
		if c.hooks.PushNotificationsOpen != nil {
			c.hooks.PushNotificationsOpen()
		}
	case SessionRenew:
		if c.hooks.SessionRenew != nil {
			c.hooks.SessionRenew()
		}
	case Minimize:
		c.minimize(true)
	case Maximize:
		c.minimize(false)
	case EnvironmentSelected:
		if c.hooks.EnvironmentSelected != nil {
			c.hooks.EnvironmentSelected(msg)
			return
		}
		c.navigate(msg.URL)
	case Cancel:
		if c.hooks.Cancel != nil {
			c.hooks.Cancel()
		}
	case Unknown:
		c.logger.Debug("ignoring widget message", "messageType", msg.Type)
	default:
		c.logger.Warn("unhandled widget message", "type", fmt.Sprintf("%T", msg))
	}
}

func (c *Controller) onReady() {
	c.mu.Lock()
	poster := c.poster
	if poster == nil && c.remove != nil {
		c.early = true
	}
	c.mu.Unlock()
	if poster == nil {
		return
	}
	// the widget validates host traffic against host-ready, so it goes first
	if err := poster.Post(TypeHostReady, nil); err != nil {
		c.logger.Warn("failed to post host-ready", "error", err)
		return
	}
	if c.definition.Payload != nil {
		for _, outbound := range c.definition.Payload(context.Background(), c) {
			if err := poster.Post(outbound.Type, outbound.Payload); err != nil {
				c.logger.Warn("failed to post widget payload", "messageType", outbound.Type, "error", err)
			}
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isLoaded && c.loaded != nil && c.poster == poster {
		c.isLoaded = true
		close(c.loaded)
	}
}

func (c *Controller) setClass(class string, on bool) {
	if class == "" {
		return
	}
	if current := c.frame.Current(); current != nil {
		current.SetClass(class, on)
	}
}

func (c *Controller) minimize(minimized bool) {
	c.setClass(c.definition.MinimizedClass, minimized)
	if c.hooks.Minimized != nil {
		c.hooks.Minimized(minimized)
	}
}

func (c *Controller) navigate(URL string) {
	if URL == "" || c.navigator == nil {
		return
	}
	c.navigator.Navigate(URL)
}

type tokenReply struct {
	MessageID string `json:"messageId"`
	Token     string `json:"token"`
}

type tokenFail struct {
	MessageID string      `json:"messageId"`
	Reason    *auth.Error `json:"reason"`
}

func (c *Controller) replyToken(msg GetToken) {
	args := msg.TokenArgs
	token, err := c.tokens.GetToken(context.Background(), &args)
	if err != nil {
		reason := &auth.Error{}
		if !errors.As(err, &reason) {
			reason = auth.NewError(auth.Unspecified, err.Error())
		}
		c.post(TypeTokenFail, tokenFail{MessageID: msg.MessageID, Reason: reason})
		return
	}
	c.post(TypeToken, tokenReply{MessageID: msg.MessageID, Token: token})
}

type searchResults struct {
	MessageID string `json:"messageId"`
	Results   any    `json:"results"`
}

func (c *Controller) replySearch(msg Search) {
	var results any
	if c.hooks.Search != nil {
		var err error
		if results, err = c.hooks.Search(context.Background(), msg.SearchArgs); err != nil {
			c.logger.Debug("local search failed", "error", err)
			results = nil
		}
	}
	c.post(TypeSearchResults, searchResults{MessageID: msg.MessageID, Results: results})
}

func (c *Controller) post(messageType string, payload any) {
	if err := c.Post(messageType, payload); err != nil {
		c.logger.Debug("failed to reply to widget", "messageType", messageType, "error", err)
	}
}

// Post sends a message to the loaded widget.
func (c *Controller) Post(messageType string, payload any) error {
	c.mu.Lock()
	poster, loaded := c.poster, c.isLoaded
	c.mu.Unlock()
	if !loaded {
		return ErrNotReady
	}
	return poster.Post(messageType, payload)
}

// Destroy removes the frame and listener and resets the controller so Load
// can start over. It is safe to call more than once.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remove != nil {
		c.remove()
		c.remove = nil
	}
	c.frame.Destroy()
	c.loaded = nil
	c.isLoaded = false
	c.poster = nil
	c.early = false
}
