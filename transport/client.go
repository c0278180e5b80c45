package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/navigator"
)

const (
	// DefaultCSRFURL is the identity service CSRF handshake endpoint.
	DefaultCSRFURL = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com/session/csrf"
	csrfHeader     = "X-CSRF"
	serviceHeader  = "X-SVC-ID"
	defaultTimeout = 30 * time.Second
)

// Client is the HTTP Transport.
type Client struct {
	httpClient *http.Client
	csrfURL    string
	navigator  navigator.Navigator
	location   func() string
	logger     *slog.Logger
}

type csrfResponse struct {
	Token string `json:"csrf_token"`
}

// New creates a Client.
func New(options ...Option) (*Client, error) {
	ret := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		csrfURL:    DefaultCSRFURL,
		location:   func() string { return "" },
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	// the CSRF handshake and the request it protects must share the session cookie
	client := *ret.httpClient
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		client.Jar = jar
	}
	ret.httpClient = &client
	return ret, nil
}

// Request performs a CSRF protected POST.
func (c *Client) Request(ctx context.Context, request *Request) (json.RawMessage, error) {
	args := auth.TokenArgs{EnvironmentID: request.EnvironmentID, PermissionScope: request.PermissionScope, LegalEntityID: request.LegalEntityID}
	if err := args.Validate(); err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if !request.BypassCSRF {
		data, err := c.post(ctx, c.csrfURL, nil, nil)
		if err != nil {
			return nil, c.fail(request, err)
		}
		var csrf csrfResponse
		if err = json.Unmarshal(data, &csrf); err != nil {
			return nil, c.fail(request, auth.NewError(auth.Unspecified, "invalid csrf response"))
		}
		if csrf.Token != "" {
			headers[csrfHeader] = csrf.Token
		}
	}
	if request.ServiceID != "" {
		headers[serviceHeader] = request.ServiceID
	}
	body := request.Body
	if body == nil {
		body = requestBody(request)
	}
	data, err := c.post(ctx, request.URL, headers, body)
	if err != nil {
		return nil, c.fail(request, err)
	}
	return data, nil
}

func requestBody(request *Request) map[string]string {
	ret := map[string]string{}
	if request.EnvironmentID != "" {
		ret["environment_id"] = request.EnvironmentID
	}
	if request.PermissionScope != "" {
		ret["permission_scope"] = request.PermissionScope
	}
	if request.LegalEntityID != "" {
		ret["legal_entity_id"] = request.LegalEntityID
	}
	return ret
}

func (c *Client) post(ctx context.Context, URL string, headers map[string]string, body any) (json.RawMessage, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, URL, reader)
	if err != nil {
		return nil, auth.NewError(auth.Unspecified, err.Error())
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpRequest.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, auth.NewError(auth.Offline, "The user is offline.")
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, auth.NewError(auth.Offline, err.Error())
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, auth.NewError(auth.NotLoggedIn, "The user is not logged in.")
	case resp.StatusCode == http.StatusForbidden:
		return nil, auth.NewError(auth.InvalidEnvironment, "The user is not a member of the specified environment.")
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, auth.NewError(auth.Unspecified, fmt.Sprintf("An unknown error occurred (status %d).", resp.StatusCode))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	return data, nil
}

// fail applies the redirect policy and returns err unchanged.
func (c *Client) fail(request *Request, err error) error {
	code := auth.CodeOf(err)
	c.logger.Debug("identity request failed", "url", request.URL, "code", code.String())
	if request.DisableRedirect || c.navigator == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch code {
	case auth.Offline, auth.PermissionScopeNoEnvironment:
	case auth.NotLoggedIn:
		c.navigator.RedirectToSignIn(c.location(), request.RedirectParams)
	default:
		c.navigator.RedirectToError(code)
	}
	return err
}

// RequestWithToken performs verb against URL with a bearer token.
func (c *Client) RequestWithToken(ctx context.Context, URL, token, verb string, body any) (json.RawMessage, error) {
	if verb == "" {
		verb = http.MethodGet
	}
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, verb, URL, reader)
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: URL, StatusCode: resp.StatusCode, Body: data}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	return data, nil
}
