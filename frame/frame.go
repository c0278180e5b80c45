// Package frame abstracts the parts of the browser document the host-side
// components touch: iframe creation, message and input listeners, and
// posting to another window.
package frame

import "sync"

// Window is a message target (an iframe content window, or the host window).
type Window interface {
	PostMessage(data any, targetOrigin string) error
}

// Event is a received message event.
type Event struct {
	Origin string
	Source Window
	Data   any
}

// InputKind names a user input event type.
type InputKind string

const (
	KeyPress  InputKind = "keypress"
	MouseMove InputKind = "mousemove"
)

// InputEvent is a user input event; X and Y are set for mouse events.
type InputEvent struct {
	Kind InputKind
	X    int
	Y    int
}

// Role identifies a frame's purpose. At most one frame per role exists per Singleton.
type Role string

const (
	RoleAuthBridge     Role = "auth-bridge"
	RoleSessionWatcher Role = "session-watcher"
	RoleKeepAlive      Role = "legacy-keep-alive"
	RoleOmnibar        Role = "omnibar"
	RoleVertical       Role = "omnibar-vertical"
	RoleToast          Role = "toast-container"
	RoleWelcome        Role = "welcome"
	RoleInactivity     Role = "inactivity-prompt"
)

// Spec describes the frame to create.
type Spec struct {
	Role   Role
	URL    string
	Title  string
	Hidden bool
	Class  string
}

// Frame is a created iframe and its container.
type Frame interface {
	Role() Role
	URL() string
	ContentWindow() Window
	// SetClass toggles a CSS class on the container.
	SetClass(class string, on bool)
	// Remove detaches the frame (and its container) from the document.
	Remove()
}

// Document is the host page.
type Document interface {
	// Origin is the scheme://host[:port] of the host page.
	Origin() string
	// Location is the full URL the host page is showing.
	Location() string
	CreateFrame(spec Spec) (Frame, error)
	// AddMessageListener registers fn for window message events and returns its remover.
	AddMessageListener(fn func(Event)) (remove func())
	// AddInputListener registers fn for user input of kind and returns its remover.
	AddInputListener(kind InputKind, fn func(InputEvent)) (remove func())
}

// Singleton owns the single frame of a role. Frames are created without
// holding the state lock, so a frame may announce itself while it is being
// created.
type Singleton struct {
	create sync.Mutex
	mu     sync.Mutex
	doc    Document
	spec   Spec
	frame  Frame
}

// NewSingleton creates a Singleton that will create frames from spec.
func NewSingleton(doc Document, spec Spec) *Singleton {
	return &Singleton{doc: doc, spec: spec}
}

// Ensure returns the existing frame, creating it first when absent. created
// reports whether a new frame was made.
func (s *Singleton) Ensure() (frame Frame, created bool, err error) {
	s.create.Lock()
	defer s.create.Unlock()
	if current := s.Current(); current != nil {
		return current, false, nil
	}
	if frame, err = s.doc.CreateFrame(s.spec); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	return frame, true, nil
}

// Replace removes the current frame, if any, and creates a new one.
func (s *Singleton) Replace() (Frame, error) {
	s.create.Lock()
	defer s.create.Unlock()
	s.Destroy()
	frame, err := s.doc.CreateFrame(s.spec)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	return frame, nil
}

// Current returns the current frame or nil.
func (s *Singleton) Current() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Destroy removes the current frame. Calling it again is a no-op.
func (s *Singleton) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame != nil {
		s.frame.Remove()
		s.frame = nil
	}
}
