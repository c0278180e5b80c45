package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
)

const (
	DefaultOmnibarURL  = "https://host.nxt.blackbaud.com/omnibar/"
	DefaultVerticalURL = "https://host.nxt.blackbaud.com/omnibar/vertical/"

	OmnibarClass          = "sky-omnibar-iframe"
	OmnibarExpandedClass  = "sky-omnibar-iframe-expanded"
	VerticalClass         = "sky-omnibar-vertical-iframe"
	VerticalExpandedClass = "sky-omnibar-vertical-iframe-expanded"
	VerticalMinimized     = "sky-omnibar-vertical-minimized"
)

// NavConfig is the nav-ready payload.
type NavConfig struct {
	ServiceID     string    `json:"svcId,omitempty"`
	EnvironmentID string    `json:"envId,omitempty"`
	LegalEntityID string    `json:"leId,omitempty"`
	LocalNavItems []NavItem `json:"localNavItems,omitempty"`
	LocalSearch   bool      `json:"localSearch,omitempty"`
	Theme         any       `json:"theme,omitempty"`
	URL           string    `json:"url,omitempty"`
	UserID        string    `json:"userId,omitempty"`
}

// Omnibar hosts the horizontal or vertical navigation widget.
type Omnibar struct {
	*Controller
	mu     sync.Mutex
	config NavConfig
}

// NewOmnibar creates the omnibar controller.
func NewOmnibar(doc frame.Document, tokens Tokens, config NavConfig, options ...Option) *Omnibar {
	return newOmnibar(doc, tokens, config, Definition{
		Name:          "omnibar",
		Frame:         frame.Spec{Role: frame.RoleOmnibar, URL: DefaultOmnibarURL, Title: "Navigation", Class: OmnibarClass},
		Source:        message.SourceOmnibar,
		ExpandedClass: OmnibarExpandedClass,
	}, options)
}

// NewVerticalOmnibar creates the vertical omnibar controller.
func NewVerticalOmnibar(doc frame.Document, tokens Tokens, config NavConfig, options ...Option) *Omnibar {
	return newOmnibar(doc, tokens, config, Definition{
		Name:           "omnibar-vertical",
		Frame:          frame.Spec{Role: frame.RoleVertical, URL: DefaultVerticalURL, Title: "Navigation", Class: VerticalClass},
		Source:         message.SourceVertical,
		ExpandedClass:  VerticalExpandedClass,
		MinimizedClass: VerticalMinimized,
	}, options)
}

func newOmnibar(doc frame.Document, tokens Tokens, config NavConfig, definition Definition, options []Option) *Omnibar {
	ret := &Omnibar{config: config}
	definition.Payload = ret.payload
	ret.Controller = newController(doc, tokens, definition, options...)
	return ret
}

func (o *Omnibar) payload(ctx context.Context, c *Controller) []Outbound {
	o.mu.Lock()
	config := o.config
	o.mu.Unlock()
	config.LocalSearch = c.hooks.Search != nil
	if config.URL == "" {
		config.URL = c.doc.Location()
	}
	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx, &auth.TokenArgs{DisableRedirect: true})
		if err == nil {
			if claims, err := auth.Claims(token); err == nil {
				config.UserID = claims.UserID
			}
		}
	}
	return []Outbound{{Type: TypeNavReady, Payload: config}}
}

// SetTheme pushes a theme change.
func (o *Omnibar) SetTheme(theme any) error {
	o.mu.Lock()
	o.config.Theme = theme
	o.mu.Unlock()
	return push(o.Controller, TypeThemeChange, map[string]any{"theme": theme})
}

// UpdateNavItems replaces the host supplied nav items.
func (o *Omnibar) UpdateNavItems(items []NavItem) error {
	o.mu.Lock()
	o.config.LocalNavItems = items
	o.mu.Unlock()
	return push(o.Controller, TypeNavItemsUpdate, map[string]any{"localNavItems": items})
}

// PushNotificationsChange forwards the current notifications.
func (o *Omnibar) PushNotificationsChange(notifications any) error {
	return push(o.Controller, TypePushNotificationsChange, map[string]any{"notifications": notifications})
}

// NotifyLocationChanged reports a client-side navigation to URL.
func (o *Omnibar) NotifyLocationChanged(URL string) error {
	o.mu.Lock()
	o.config.URL = URL
	o.mu.Unlock()
	return push(o.Controller, TypeLocationChange, map[string]any{"location": URL})
}

// push posts when loaded; before the handshake the state travels with the
// initial payload instead.
func push(c *Controller, messageType string, payload any) error {
	if err := c.Post(messageType, payload); err != nil && !errors.Is(err, ErrNotReady) {
		return err
	}
	return nil
}
