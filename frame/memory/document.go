// Package memory is an in-memory frame.Document. It stands in for the
// browser in tests and in the command line host.
package memory

import (
	"sync"

	"github.com/viant/omnibar/frame"
)

// Message is a message posted to a Window.
type Message struct {
	Data         any
	TargetOrigin string
}

// Window records posted messages and optionally answers them.
type Window struct {
	mu        sync.Mutex
	messages  []Message
	responder func(data any, targetOrigin string)
}

// PostMessage records data and invokes the responder, if any.
func (w *Window) PostMessage(data any, targetOrigin string) error {
	w.mu.Lock()
	w.messages = append(w.messages, Message{Data: data, TargetOrigin: targetOrigin})
	responder := w.responder
	w.mu.Unlock()
	if responder != nil {
		responder(data, targetOrigin)
	}
	return nil
}

// Messages returns a copy of the posted messages.
func (w *Window) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...)
}

// OnMessage installs fn to be called for every posted message.
func (w *Window) OnMessage(fn func(data any, targetOrigin string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.responder = fn
}

// Frame is an in-memory iframe.
type Frame struct {
	mu      sync.Mutex
	spec    frame.Spec
	window  *Window
	classes map[string]bool
	removed bool
	doc     *Document
}

func (f *Frame) Role() frame.Role            { return f.spec.Role }
func (f *Frame) URL() string                 { return f.spec.URL }
func (f *Frame) Spec() frame.Spec            { return f.spec }
func (f *Frame) ContentWindow() frame.Window { return f.window }
func (f *Frame) Window() *Window             { return f.window }

func (f *Frame) SetClass(class string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if on {
		f.classes[class] = true
		return
	}
	delete(f.classes, class)
}

// HasClass reports whether class is set.
func (f *Frame) HasClass(class string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classes[class]
}

func (f *Frame) Remove() {
	f.mu.Lock()
	f.removed = true
	f.mu.Unlock()
	f.doc.detach(f)
}

// Removed reports whether Remove was called.
func (f *Frame) Removed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed
}

// Document is an in-memory host page.
type Document struct {
	mu       sync.Mutex
	origin   string
	location string
	frames   []*Frame
	nextID   int
	message  map[int]func(frame.Event)
	input    map[frame.InputKind]map[int]func(frame.InputEvent)
	created  func(*Frame)
}

// New creates a Document served from origin and showing location.
func New(origin, location string) *Document {
	return &Document{
		origin:   origin,
		location: location,
		message:  map[int]func(frame.Event){},
		input:    map[frame.InputKind]map[int]func(frame.InputEvent){},
	}
}

func (d *Document) Origin() string { return d.origin }

func (d *Document) Location() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location
}

// SetLocation changes the URL the document reports.
func (d *Document) SetLocation(location string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location = location
}

// OnFrameCreated installs fn to be called for each created frame, before
// CreateFrame returns; tests use it to wire responders.
func (d *Document) OnFrameCreated(fn func(*Frame)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created = fn
}

func (d *Document) CreateFrame(spec frame.Spec) (frame.Frame, error) {
	ret := &Frame{spec: spec, window: &Window{}, classes: map[string]bool{}, doc: d}
	if spec.Class != "" {
		ret.classes[spec.Class] = true
	}
	d.mu.Lock()
	d.frames = append(d.frames, ret)
	created := d.created
	d.mu.Unlock()
	if created != nil {
		created(ret)
	}
	return ret, nil
}

func (d *Document) detach(f *Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, candidate := range d.frames {
		if candidate == f {
			d.frames = append(d.frames[:i], d.frames[i+1:]...)
			return
		}
	}
}

// Frames returns the attached frames of role.
func (d *Document) Frames(role frame.Role) []*Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ret []*Frame
	for _, f := range d.frames {
		if f.spec.Role == role {
			ret = append(ret, f)
		}
	}
	return ret
}

// Frame returns the first attached frame of role, or nil.
func (d *Document) Frame(role frame.Role) *Frame {
	if frames := d.Frames(role); len(frames) > 0 {
		return frames[0]
	}
	return nil
}

func (d *Document) AddMessageListener(fn func(frame.Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.message[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.message, id)
	}
}

func (d *Document) AddInputListener(kind frame.InputKind, fn func(frame.InputEvent)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	if d.input[kind] == nil {
		d.input[kind] = map[int]func(frame.InputEvent){}
	}
	d.input[kind][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.input[kind], id)
	}
}

// MessageListeners returns the number of registered message listeners.
func (d *Document) MessageListeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.message)
}

// InputListeners returns the number of registered input listeners.
func (d *Document) InputListeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, listeners := range d.input {
		count += len(listeners)
	}
	return count
}

// Dispatch delivers event to every message listener.
func (d *Document) Dispatch(event frame.Event) {
	d.mu.Lock()
	listeners := make([]func(frame.Event), 0, len(d.message))
	for _, fn := range d.message {
		listeners = append(listeners, fn)
	}
	d.mu.Unlock()
	for _, fn := range listeners {
		fn(event)
	}
}

// Input delivers event to every listener of its kind.
func (d *Document) Input(event frame.InputEvent) {
	d.mu.Lock()
	listeners := make([]func(frame.InputEvent), 0)
	for _, fn := range d.input[event.Kind] {
		listeners = append(listeners, fn)
	}
	d.mu.Unlock()
	for _, fn := range listeners {
		fn(event)
	}
}
