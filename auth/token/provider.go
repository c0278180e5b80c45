package token

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/bridge"
	"github.com/viant/omnibar/transport"
	"golang.org/x/oauth2"
)

const (
	DefaultTokenURL      = "https://s21aidntoken00blkbapp01.nxt.blackbaud.com/oauth2/token"
	DefaultTrustedDomain = "blackbaud.com"
)

// Bridge fetches tokens for pages outside the trusted domain.
type Bridge interface {
	GetToken(ctx context.Context, args auth.TokenArgs) (*bridge.TokenResponse, error)
}

// Provider fetches tokens directly or through the bridge depending on the page origin.
type Provider struct {
	transport     transport.Transport
	bridge        Bridge
	origin        func() string
	trustedDomain string
	tokenURL      string
	now           func() time.Time
}

// NewProvider creates a Provider; origin reports the host page origin.
func NewProvider(aTransport transport.Transport, origin func() string, options ...ProviderOption) *Provider {
	ret := &Provider{
		transport:     aTransport,
		origin:        origin,
		trustedDomain: DefaultTrustedDomain,
		tokenURL:      DefaultTokenURL,
		now:           time.Now,
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// GetToken fetches a fresh token.
func (p *Provider) GetToken(ctx context.Context, args auth.TokenArgs) (*oauth2.Token, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if p.IsFirstParty() {
		return p.direct(ctx, args)
	}
	if p.bridge == nil {
		return nil, auth.NewError(auth.Unspecified, "third-party origin requires the authentication bridge")
	}
	response, err := p.bridge.GetToken(ctx, args)
	if err != nil {
		return nil, err
	}
	return p.toToken(response.AccessToken, response.ExpiresIn), nil
}

// IsFirstParty reports whether the page origin belongs to the trusted domain.
func (p *Provider) IsFirstParty() bool {
	origin, err := url.Parse(p.origin())
	if err != nil {
		return false
	}
	host := strings.ToLower(origin.Hostname())
	domain := strings.ToLower(p.trustedDomain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func (p *Provider) direct(ctx context.Context, args auth.TokenArgs) (*oauth2.Token, error) {
	data, err := p.transport.Request(ctx, &transport.Request{
		URL:             p.tokenURL,
		DisableRedirect: args.DisableRedirect,
		EnvironmentID:   args.EnvironmentID,
		PermissionScope: args.PermissionScope,
		LegalEntityID:   args.LegalEntityID,
	})
	if err != nil {
		return nil, err
	}
	var response tokenResponse
	if err = json.Unmarshal(data, &response); err != nil || response.AccessToken == "" {
		return nil, auth.NewError(auth.Unspecified, fmt.Sprintf("invalid token response: %s", data))
	}
	return p.toToken(response.AccessToken, response.ExpiresIn), nil
}

func (p *Provider) toToken(accessToken string, expiresIn int) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      p.now().Add(time.Duration(expiresIn) * time.Second),
	}
}
