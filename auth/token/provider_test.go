package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/bridge"
	"github.com/viant/omnibar/internal/mock"
	"github.com/viant/omnibar/transport"
)

type fakeBridge struct {
	calls int
	args  auth.TokenArgs
}

func (f *fakeBridge) GetToken(ctx context.Context, args auth.TokenArgs) (*bridge.TokenResponse, error) {
	f.calls++
	f.args = args
	return &bridge.TokenResponse{AccessToken: "bridged", ExpiresIn: 0}, nil
}

func TestProvider_IsFirstParty(t *testing.T) {
	testCases := []struct {
		origin string
		expect bool
	}{
		{origin: "https://app.blackbaud.com", expect: true},
		{origin: "https://host.nxt.blackbaud.com:443", expect: true},
		{origin: "https://blackbaud.com", expect: true},
		{origin: "https://notblackbaud.com", expect: false},
		{origin: "https://blackbaud.com.evil.io", expect: false},
		{origin: "http://localhost:5000", expect: false},
	}
	for _, testCase := range testCases {
		provider := NewProvider(nil, func() string { return testCase.origin })
		assert.Equal(t, testCase.expect, provider.IsFirstParty(), testCase.origin)
	}
}

func TestProvider_GetToken(t *testing.T) {
	service, err := mock.NewIdentityService()
	require.NoError(t, err)
	defer service.Close()
	client, err := transport.New(transport.WithCSRFURL(service.URL() + "/session/csrf"))
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("first party requests directly", func(t *testing.T) {
		viaBridge := &fakeBridge{}
		provider := NewProvider(client, func() string { return "https://app.blackbaud.com" },
			WithTokenURL(service.URL()+"/token"), WithBridge(viaBridge), WithProviderClock(clock))
		token, err := provider.GetToken(context.Background(), auth.TokenArgs{EnvironmentID: "e1"})
		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
		assert.Equal(t, now.Add(time.Duration(service.ExpiresIn)*time.Second), token.Expiry)
		assert.Equal(t, 0, viaBridge.calls)
	})

	t.Run("third party goes through the bridge", func(t *testing.T) {
		viaBridge := &fakeBridge{}
		provider := NewProvider(client, func() string { return "https://partner.example.com" },
			WithTokenURL(service.URL()+"/token"), WithBridge(viaBridge), WithProviderClock(clock))
		token, err := provider.GetToken(context.Background(), auth.TokenArgs{EnvironmentID: "e2", PermissionScope: "s"})
		require.NoError(t, err)
		assert.Equal(t, "bridged", token.AccessToken)
		assert.Equal(t, now, token.Expiry)
		assert.Equal(t, 1, viaBridge.calls)
		assert.Equal(t, "e2", viaBridge.args.EnvironmentID)
	})

	t.Run("third party without a bridge is rejected", func(t *testing.T) {
		provider := NewProvider(client, func() string { return "https://partner.example.com" }, WithTokenURL(service.URL()+"/token"))
		calls := service.TokenCalls()
		_, err := provider.GetToken(context.Background(), auth.TokenArgs{EnvironmentID: "e3"})
		require.Error(t, err)
		assert.Equal(t, auth.Unspecified, auth.CodeOf(err))
		assert.Equal(t, calls, service.TokenCalls())
	})

	t.Run("scope without environment is rejected", func(t *testing.T) {
		provider := NewProvider(client, func() string { return "https://app.blackbaud.com" }, WithTokenURL(service.URL()+"/token"))
		_, err := provider.GetToken(context.Background(), auth.TokenArgs{PermissionScope: "s"})
		assert.Equal(t, auth.PermissionScopeNoEnvironment, auth.CodeOf(err))
	})
}
