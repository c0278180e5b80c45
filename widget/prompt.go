package widget

import (
	"context"
	"sync"
	"time"

	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
)

const (
	DefaultWelcomeURL    = "https://host.nxt.blackbaud.com/auth-client/welcome/"
	DefaultInactivityURL = "https://host.nxt.blackbaud.com/auth-client/inactivity/"
	ModalClass           = "sky-omnibar-modal-iframe"
)

// ContextArgs is the context-provide payload of the welcome picker.
type ContextArgs struct {
	ServiceID     string `json:"svcId,omitempty"`
	EnvironmentID string `json:"envId,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	URL           string `json:"url,omitempty"`
}

// NewWelcome creates the welcome context picker. A selection navigates to
// the chosen URL unless WithEnvironmentSelected handles it.
func NewWelcome(doc frame.Document, tokens Tokens, args ContextArgs, options ...Option) *Controller {
	return newController(doc, tokens, Definition{
		Name:   "welcome",
		Frame:  frame.Spec{Role: frame.RoleWelcome, URL: DefaultWelcomeURL, Title: "Welcome", Class: ModalClass},
		Source: message.SourceOmnibar,
		Payload: func(_ context.Context, c *Controller) []Outbound {
			provided := args
			if provided.URL == "" {
				provided.URL = c.doc.Location()
			}
			return []Outbound{{Type: TypeContextProvide, Payload: map[string]any{"args": provided}}}
		},
	}, options...)
}

// InactivityPrompt warns that the session is about to expire.
type InactivityPrompt struct {
	*Controller
	mu         sync.Mutex
	expiration time.Time
}

// NewInactivityPrompt creates the inactivity prompt for a session expiring at expiration.
func NewInactivityPrompt(doc frame.Document, tokens Tokens, expiration time.Time, options ...Option) *InactivityPrompt {
	ret := &InactivityPrompt{expiration: expiration}
	ret.Controller = newController(doc, tokens, Definition{
		Name:    "inactivity",
		Frame:   frame.Spec{Role: frame.RoleInactivity, URL: DefaultInactivityURL, Title: "Session expiring", Class: ModalClass},
		Source:  message.SourceOmnibar,
		Payload: ret.payload,
	}, options...)
	return ret
}

func (p *InactivityPrompt) payload(context.Context, *Controller) []Outbound {
	p.mu.Lock()
	defer p.mu.Unlock()
	return []Outbound{{Type: TypeExpiration, Payload: expirationPayload(p.expiration)}}
}

// SetExpiration updates the displayed expiration.
func (p *InactivityPrompt) SetExpiration(expiration time.Time) error {
	p.mu.Lock()
	p.expiration = expiration
	p.mu.Unlock()
	return push(p.Controller, TypeExpiration, expirationPayload(expiration))
}

func expirationPayload(expiration time.Time) map[string]any {
	return map[string]any{"expirationDate": expiration.UnixMilli()}
}
