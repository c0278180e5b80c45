package message

import "github.com/viant/omnibar/frame"

// Validator accepts structured envelopes tagged with Source and sent from one
// of the allowed origins.
type Validator struct {
	Source  string
	origins map[string]bool
}

// NewValidator creates a Validator for source accepting the given origins.
func NewValidator(source string, origins ...string) *Validator {
	ret := &Validator{Source: source, origins: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		ret.origins[origin] = true
	}
	return ret
}

// Accept returns the envelope when event is valid, or false.
func (v *Validator) Accept(event frame.Event) (*Envelope, bool) {
	if !v.origins[event.Origin] {
		return nil, false
	}
	envelope, err := Parse(event.Data)
	if err != nil || envelope.Source != v.Source {
		return nil, false
	}
	return envelope, true
}

// OriginValidator accepts JSON-string envelopes from a single literal origin.
type OriginValidator struct {
	Origin string
}

// Accept returns the envelope when event is valid, or false. Malformed data
// is discarded.
func (v OriginValidator) Accept(event frame.Event) (*Envelope, bool) {
	if event.Origin != v.Origin {
		return nil, false
	}
	envelope, err := ParseString(event.Data)
	if err != nil {
		return nil, false
	}
	return envelope, true
}
