package transport

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request describes an authenticated identity-service call.
type Request struct {
	URL             string
	RedirectParams  map[string]string
	DisableRedirect bool
	EnvironmentID   string
	PermissionScope string
	LegalEntityID   string
	BypassCSRF      bool
	ServiceID       string
	// Body replaces the default {environment_id, permission_scope, legal_entity_id} body.
	Body any
}

// Transport is the boundary every component uses to reach remote services.
type Transport interface {
	// Request performs a CSRF protected POST and returns the JSON body, or an *auth.Error.
	Request(ctx context.Context, request *Request) (json.RawMessage, error)
	// RequestWithToken performs verb against URL with a bearer token and returns the JSON body, or a *StatusError.
	RequestWithToken(ctx context.Context, URL, token, verb string, body any) (json.RawMessage, error)
}

// StatusError is the failed request returned by RequestWithToken.
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %v failed with status %d", e.URL, e.StatusCode)
}
