package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Source tags identifying logical channels.
const (
	SourceAuthClient     = "auth-client"
	SourceOmnibar        = "skyux-spa-omnibar"
	SourceVertical       = "skyux-spa-omnibar-vertical"
	SourceToastContainer = "skyux-spa-omnibar-toast-container"
)

// DefaultTrustedOrigin is the origin every widget and helper frame is served from.
const DefaultTrustedOrigin = "https://host.nxt.blackbaud.com"

// ErrMalformed is returned for payloads that are not a JSON object envelope.
var ErrMalformed = errors.New("malformed message")

// Envelope is a decoded message: the routing fields plus the whole raw object
// so channel specific payload fields can be decoded on demand.
type Envelope struct {
	Source      string `json:"source,omitempty"`
	MessageType string `json:"messageType"`
	raw         json.RawMessage
}

// Decode unmarshals the whole envelope object into v.
func (e *Envelope) Decode(v any) error {
	if len(e.raw) == 0 {
		return ErrMalformed
	}
	return json.Unmarshal(e.raw, v)
}

// Raw returns the raw JSON object.
func (e *Envelope) Raw() json.RawMessage { return e.raw }

// Parse decodes structured message data (a map, struct, or raw JSON bytes).
func Parse(data any) (*Envelope, error) {
	var raw []byte
	switch actual := data.(type) {
	case nil:
		return nil, ErrMalformed
	case json.RawMessage:
		raw = actual
	case []byte:
		raw = actual
	case string:
		// strings are only valid on origin-only channels
		return nil, ErrMalformed
	default:
		var err error
		if raw, err = json.Marshal(actual); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return parseRaw(raw)
}

// ParseString decodes a JSON-stringified envelope.
func ParseString(data any) (*Envelope, error) {
	text, ok := data.(string)
	if !ok {
		return nil, ErrMalformed
	}
	return parseRaw([]byte(text))
}

func parseRaw(raw []byte) (*Envelope, error) {
	ret := &Envelope{}
	if err := json.Unmarshal(raw, ret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ret.MessageType == "" {
		return nil, ErrMalformed
	}
	ret.raw = append(json.RawMessage(nil), raw...)
	return ret, nil
}

// Compose builds a postable object: payload's JSON fields merged with the
// source and messageType routing fields.
func Compose(source, messageType string, payload any) (map[string]any, error) {
	ret := map[string]any{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(data, &ret); err != nil {
			return nil, fmt.Errorf("payload of %v must be an object: %w", messageType, err)
		}
	}
	if source != "" {
		ret["source"] = source
	}
	ret["messageType"] = messageType
	return ret, nil
}
