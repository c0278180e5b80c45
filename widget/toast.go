package widget

import (
	"context"
	"sync"

	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
)

const (
	DefaultToastURL    = "https://host.nxt.blackbaud.com/notifications/toast/"
	ToastClass         = "sky-omnibar-toast-container"
	ToastExpandedClass = "sky-omnibar-toast-container-expanded"
)

// ToastContainer hosts the push notification toasts.
type ToastContainer struct {
	*Controller
	mu            sync.Mutex
	notifications any
}

// NewToastContainer creates the toast container controller.
func NewToastContainer(doc frame.Document, tokens Tokens, options ...Option) *ToastContainer {
	ret := &ToastContainer{}
	ret.Controller = newController(doc, tokens, Definition{
		Name:          "toast-container",
		Frame:         frame.Spec{Role: frame.RoleToast, URL: DefaultToastURL, Title: "Notifications", Class: ToastClass},
		Source:        message.SourceToastContainer,
		ExpandedClass: ToastExpandedClass,
		Payload:       ret.payload,
	}, options...)
	return ret
}

func (t *ToastContainer) payload(context.Context, *Controller) []Outbound {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.notifications == nil {
		return nil
	}
	return []Outbound{{Type: TypePushNotificationsChange, Payload: map[string]any{"notifications": t.notifications}}}
}

// PushNotificationsChange forwards the current notifications.
func (t *ToastContainer) PushNotificationsChange(notifications any) error {
	t.mu.Lock()
	t.notifications = notifications
	t.mu.Unlock()
	return push(t.Controller, TypePushNotificationsChange, map[string]any{"notifications": notifications})
}
