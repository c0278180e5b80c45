package message

import (
	"encoding/json"
	"fmt"

	"github.com/viant/omnibar/frame"
)

// Poster sends envelopes to a window, restricted to the target origin.
type Poster struct {
	Window       frame.Window
	TargetOrigin string
	Source       string
}

// Post sends messageType with payload's fields.
func (p *Poster) Post(messageType string, payload any) error {
	if p == nil || p.Window == nil {
		return fmt.Errorf("unable to post %v: no target window", messageType)
	}
	data, err := Compose(p.Source, messageType, payload)
	if err != nil {
		return err
	}
	return p.Window.PostMessage(data, p.TargetOrigin)
}

// PostString sends messageType with payload's fields as a JSON string, the
// format origin-only channels expect.
func (p *Poster) PostString(messageType string, payload any) error {
	if p == nil || p.Window == nil {
		return fmt.Errorf("unable to post %v: no target window", messageType)
	}
	data, err := Compose(p.Source, messageType, payload)
	if err != nil {
		return err
	}
	text, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.Window.PostMessage(string(text), p.TargetOrigin)
}
