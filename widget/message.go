package widget

import (
	"encoding/json"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/message"
)

// Inbound message types.
const (
	TypeReady                 = "ready"
	TypeToastReady            = "toast-ready"
	TypeDisplayReady          = "display-ready"
	TypeExpand                = "expand"
	TypeCollapse              = "collapse"
	TypeNavigateURL           = "navigate-url"
	TypeNavigate              = "navigate"
	TypeGetToken              = "get-token"
	TypeSearch                = "search"
	TypeNotificationRead      = "notification-read"
	TypePushNotificationsOpen = "push-notifications-open"
	TypeSessionRenew          = "session-renew"
	TypeMinimize              = "minimize"
	TypeMaximize              = "maximize"
	TypeEnvironmentSelected   = "welcome-environment-selected"
	TypeCancel                = "welcome-cancel"
)

// Outbound message types.
const (
	TypeHostReady               = "host-ready"
	TypeNavReady                = "nav-ready"
	TypeContextProvide          = "context-provide"
	TypeExpiration              = "expiration"
	TypeToken                   = "token"
	TypeTokenFail               = "token-fail"
	TypeSearchResults           = "search-results"
	TypeLocationChange          = "location-change"
	TypePushNotificationsChange = "push-notifications-change"
	TypeThemeChange             = "theme-change"
	TypeNavItemsUpdate          = "nav-items-update"
)

// Inbound is a message sent by a widget.
type Inbound interface {
	inbound()
}

// NavItem is a navigation target offered by the omnibar.
type NavItem struct {
	Title string         `json:"title,omitempty"`
	URL   string         `json:"url"`
	Data  map[string]any `json:"data,omitempty"`
}

type (
	// Ready reports the widget finished bootstrapping.
	Ready struct{ Type string }
	// Expand asks for the expanded frame size.
	Expand struct{}
	// Collapse asks for the collapsed frame size.
	Collapse struct{}
	// NavigateURL asks the host to leave for URL.
	NavigateURL struct {
		URL string `json:"url"`
	}
	// Navigate asks the host to open a nav item; the host may veto it.
	Navigate struct {
		NavItem NavItem `json:"navItem"`
	}
	// GetToken asks the host for a token; the reply echoes MessageID.
	GetToken struct {
		MessageID string `json:"messageId"`
		auth.TokenArgs
	}
	// Search asks the host to run a local search.
	Search struct {
		MessageID  string          `json:"messageId"`
		SearchArgs json.RawMessage `json:"searchArgs"`
	}
	// NotificationRead reports a notification was read.
	NotificationRead struct {
		Notification json.RawMessage `json:"notification"`
	}
	// PushNotificationsOpen asks the host to open the notification panel.
	PushNotificationsOpen struct{}
	// SessionRenew reports the user dismissed the inactivity prompt.
	SessionRenew struct{}
	// Minimize asks for the minimized vertical layout.
	Minimize struct{}
	// Maximize asks for the full vertical layout.
	Maximize struct{}
	// EnvironmentSelected reports the context picker choice.
	EnvironmentSelected struct {
		EnvironmentID string `json:"environmentId,omitempty"`
		URL           string `json:"url"`
	}
	// Cancel reports the context picker was dismissed.
	Cancel struct{}
	// Unknown is any other message type.
	Unknown struct{ Type string }
)

func (Ready) inbound()                 {}
func (Expand) inbound()                {}
func (Collapse) inbound()              {}
func (NavigateURL) inbound()           {}
func (Navigate) inbound()              {}
func (GetToken) inbound()              {}
func (Search) inbound()                {}
func (NotificationRead) inbound()      {}
func (PushNotificationsOpen) inbound() {}
func (SessionRenew) inbound()          {}
func (Minimize) inbound()              {}
func (Maximize) inbound()              {}
func (EnvironmentSelected) inbound()   {}
func (Cancel) inbound()                {}
func (Unknown) inbound()               {}

// Decode turns an envelope into its Inbound variant. Payloads that do not
// match their type decode as Unknown.
func Decode(envelope *message.Envelope) Inbound {
	var ret Inbound
	switch envelope.MessageType {
	case TypeReady, TypeToastReady, TypeDisplayReady:
		return Ready{Type: envelope.MessageType}
	case TypeExpand:
		return Expand{}
	case TypeCollapse:
		return Collapse{}
	case TypePushNotificationsOpen:
		return PushNotificationsOpen{}
	case TypeSessionRenew:
		return SessionRenew{}
	case TypeMinimize:
		return Minimize{}
	case TypeMaximize:
		return Maximize{}
	case TypeCancel:
		return Cancel{}
	case TypeNavigateURL:
		ret = decodeAs[NavigateURL](envelope)
	case TypeNavigate:
		ret = decodeAs[Navigate](envelope)
	case TypeGetToken:
		ret = decodeAs[GetToken](envelope)
	case TypeSearch:
		ret = decodeAs[Search](envelope)
	case TypeNotificationRead:
		ret = decodeAs[NotificationRead](envelope)
	case TypeEnvironmentSelected:
		ret = decodeAs[EnvironmentSelected](envelope)
	}
	if ret == nil {
		return Unknown{Type: envelope.MessageType}
	}
	return ret
}

func decodeAs[T Inbound](envelope *message.Envelope) Inbound {
	var ret T
	if err := envelope.Decode(&ret); err != nil {
		return nil
	}
	return ret
}
