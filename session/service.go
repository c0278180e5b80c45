package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/transport"
)

// DefaultServiceURL is the identity service base URL for session calls.
const DefaultServiceURL = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com/session/"

// Service reads and extends the server-side session.
type Service struct {
	transport transport.Transport
	baseURL   string
}

// NewService creates a Service; baseURL ends with the session path.
func NewService(aTransport transport.Transport, baseURL string) *Service {
	if baseURL == "" {
		baseURL = DefaultServiceURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Service{transport: aTransport, baseURL: baseURL}
}

// TTL returns the remaining session lifetime in seconds, or nil when there is
// no session. Anonymous pages skip the CSRF handshake.
func (s *Service) TTL(ctx context.Context, allowAnonymous bool) (*int, error) {
	data, err := s.transport.Request(ctx, &transport.Request{URL: s.baseURL + "ttl", DisableRedirect: true, BypassCSRF: allowAnonymous})
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return nil, nil
		}
		return nil, err
	}
	var ttl *int
	if err = json.Unmarshal(data, &ttl); err != nil {
		return nil, fmt.Errorf("invalid session ttl %s: %w", data, err)
	}
	return ttl, nil
}

// Renew extends the session.
func (s *Service) Renew(ctx context.Context) error {
	_, err := s.transport.Request(ctx, &transport.Request{URL: s.baseURL + "renew", DisableRedirect: true})
	return err
}
