package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/message"
	"github.com/viant/omnibar/navigator"
)

const (
	DefaultURL     = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com/Iframes/CrossDomainAuthFrame.html"
	DefaultOrigin  = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com"
	DefaultTimeout = 30 * time.Second

	// Source tags the frame's replies; HostSource tags the host's requests.
	Source     = "security-token-svc"
	HostSource = "bb-auth-client"

	messageReady    = "ready"
	messageGetToken = "getToken"
	messageError    = "error"
)

// State is the lifecycle of the most recent request.
type State int

const (
	StateInit State = iota
	StateIframeReady
	StateTokenRequested
	StateResolved
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIframeReady:
		return "IFRAME_READY"
	case StateTokenRequested:
		return "TOKEN_REQUESTED"
	case StateResolved:
		return "RESOLVED"
	case StateErrored:
		return "ERRORED"
	}
	return "INIT"
}

// TokenResponse is the token the frame returned.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type reply struct {
	RequestID string      `json:"requestId"`
	Value     any         `json:"value"`
	Error     *auth.Error `json:"error"`
}

// Bridge owns the hidden identity frame.
type Bridge struct {
	url       string
	origin    string
	timeout   time.Duration
	navigator navigator.Navigator
	logger    *slog.Logger
	doc       frame.Document

	mu             sync.Mutex
	frame          *frame.Singleton
	removeListener func()
	ready          chan struct{}
	isReady        bool
	state          State
	pending        *message.Table[*TokenResponse]
}

// New creates a Bridge for doc.
func New(doc frame.Document, options ...Option) *Bridge {
	ret := &Bridge{
		url:     DefaultURL,
		origin:  DefaultOrigin,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		doc:     doc,
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.frame = frame.NewSingleton(doc, frame.Spec{Role: frame.RoleAuthBridge, URL: ret.url, Title: "Blackbaud authentication", Hidden: true})
	ret.pending = message.NewTable[*TokenResponse](ret.timeout)
	return ret
}

// State returns the bridge state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// GetToken asks the identity frame for a token.
func (b *Bridge) GetToken(ctx context.Context, args auth.TokenArgs) (*TokenResponse, error) {
	window, ready, err := b.ensure()
	if err != nil {
		return nil, auth.NewError(auth.Unspecified, err.Error())
	}
	if err = b.waitReady(ctx, ready); err != nil {
		b.setState(StateErrored)
		return nil, err
	}
	call := b.pending.Open()
	b.setState(StateTokenRequested)
	poster := &message.Poster{Window: window, TargetOrigin: b.origin, Source: HostSource}
	if err = poster.Post(messageGetToken, map[string]any{"requestId": call.ID, "value": args}); err != nil {
		_ = b.pending.Fail(call.ID, auth.NewError(auth.Unspecified, err.Error()))
	}
	token, err := b.pending.Wait(ctx, call)
	if err != nil {
		b.setState(StateErrored)
		return nil, b.fail(args, err)
	}
	b.setState(StateResolved)
	return token, nil
}

// ensure returns the frame window and its ready signal. The listener is
// attached before the frame is created and the lock is released while
// creating, so a frame that announces itself during creation is heard.
func (b *Bridge) ensure() (frame.Window, <-chan struct{}, error) {
	b.mu.Lock()
	if b.removeListener == nil {
		b.ready = make(chan struct{})
		b.isReady = false
		b.removeListener = b.doc.AddMessageListener(b.onMessage)
	}
	ready := b.ready
	b.mu.Unlock()
	current, _, err := b.frame.Ensure()
	if err != nil {
		return nil, nil, err
	}
	return current.ContentWindow(), ready, nil
}

func (b *Bridge) waitReady(ctx context.Context, ready <-chan struct{}) error {
	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case <-ready:
		return nil
	case <-timer.C:
		return auth.NewError(auth.Unspecified, "authentication frame did not load")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bridge) onMessage(event frame.Event) {
	if event.Origin != b.origin {
		return
	}
	envelope, err := message.Parse(event.Data)
	if err != nil || envelope.Source != Source {
		return
	}
	var payload reply
	if err = envelope.Decode(&payload); err != nil {
		return
	}
	switch envelope.MessageType {
	case messageReady:
		b.markReady()
	case messageGetToken:
		accessToken, _ := payload.Value.(string)
		b.settle(payload.RequestID, &TokenResponse{AccessToken: accessToken, ExpiresIn: 0}, nil)
	case messageError:
		b.settle(payload.RequestID, nil, replyError(payload))
	}
}

func replyError(payload reply) *auth.Error {
	if payload.Error != nil {
		return payload.Error
	}
	if value, ok := payload.Value.(map[string]any); ok {
		ret := &auth.Error{}
		switch code := value["code"].(type) {
		case float64:
			ret.Code = auth.Code(int(code))
		case string:
			ret.Code = auth.ParseCode(code)
		}
		ret.Message, _ = value["message"].(string)
		return ret
	}
	return auth.NewError(auth.Unspecified, "")
}

func (b *Bridge) markReady() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isReady || b.ready == nil {
		return
	}
	b.isReady = true
	close(b.ready)
	if b.state == StateInit {
		b.state = StateIframeReady
	}
}

// settle resolves the request named by requestID; replies from frames that do
// not echo ids settle the oldest outstanding request.
func (b *Bridge) settle(requestID string, token *TokenResponse, authErr *auth.Error) {
	if requestID == "" {
		oldest, ok := b.pending.Oldest()
		if !ok {
			return
		}
		requestID = oldest
	}
	if authErr != nil {
		_ = b.pending.Fail(requestID, authErr)
		return
	}
	_ = b.pending.Complete(requestID, token)
}

// fail applies the redirect policy for a failed request.
func (b *Bridge) fail(args auth.TokenArgs, err error) error {
	if errors.Is(err, message.ErrTimeout) {
		return auth.NewError(auth.Unspecified, "timed out waiting for a token")
	}
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return err
	}
	b.logger.Debug("cross domain token request failed", "code", authErr.Code.String())
	if args.DisableRedirect || b.navigator == nil {
		return authErr
	}
	switch authErr.Code {
	case auth.Offline, auth.PermissionScopeNoEnvironment:
	case auth.NotLoggedIn:
		b.navigator.RedirectToSignIn(b.doc.Location(), nil)
	default:
		b.navigator.RedirectToError(authErr.Code)
	}
	return authErr
}

func (b *Bridge) setState(state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
}

// Destroy removes the frame and its listener and fails outstanding requests.
// It is safe to call more than once.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	if b.removeListener != nil {
		b.removeListener()
		b.removeListener = nil
	}
	b.frame.Destroy()
	b.ready = nil
	b.isReady = false
	b.state = StateInit
	b.mu.Unlock()
	b.pending.FailAll(auth.NewError(auth.Unspecified, "authentication frame destroyed"))
}
