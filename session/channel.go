package session

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
)

const (
	messageSessionChange = "session_change"
	messageTTL           = "ttl"
	messageRenew         = "renew"
)

// channel is a hidden helper frame that talks JSON strings and is trusted
// by origin alone.
type channel struct {
	doc       frame.Document
	frame     *frame.Singleton
	validator message.OriginValidator
	handle    func(*message.Envelope)

	mu     sync.Mutex
	remove func()
}

func newChannel(doc frame.Document, spec frame.Spec, origin string, handle func(*message.Envelope)) *channel {
	return &channel{
		doc:       doc,
		frame:     frame.NewSingleton(doc, spec),
		validator: message.OriginValidator{Origin: origin},
		handle:    handle,
	}
}

// open attaches the listener before creating the frame, so a broadcast sent
// while the frame loads is not lost.
func (c *channel) open() error {
	c.mu.Lock()
	if c.remove == nil {
		c.remove = c.doc.AddMessageListener(c.onMessage)
	}
	c.mu.Unlock()
	_, _, err := c.frame.Ensure()
	return err
}

func (c *channel) onMessage(event frame.Event) {
	if envelope, ok := c.validator.Accept(event); ok {
		c.handle(envelope)
	}
}

func (c *channel) post(messageType string) error {
	current := c.frame.Current()
	if current == nil {
		return fmt.Errorf("unable to post %v: frame closed", messageType)
	}
	poster := &message.Poster{Window: current.ContentWindow(), TargetOrigin: c.validator.Origin, Source: message.SourceAuthClient}
	return poster.PostString(messageType, nil)
}

func (c *channel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remove != nil {
		c.remove()
		c.remove = nil
	}
	c.frame.Destroy()
}

// originOf returns scheme://host of URL.
func originOf(URL string) (string, error) {
	parsed, err := url.Parse(URL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid frame URL: %v", URL)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
