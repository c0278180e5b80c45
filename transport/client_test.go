package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/internal/mock"
	"github.com/viant/omnibar/navigator"
)

func newTestClient(t *testing.T, service *mock.IdentityService, nav navigator.Navigator) *Client {
	client, err := New(
		WithCSRFURL(service.URL()+"/session/csrf"),
		WithNavigator(nav),
		WithLocation(func() string { return "https://app.blackbaud.com/current" }),
	)
	require.NoError(t, err)
	return client
}

func TestClient_Request(t *testing.T) {
	service, err := mock.NewIdentityService()
	require.NoError(t, err)
	defer service.Close()

	testCases := []struct {
		description   string
		tokenStatus   int
		request       Request
		expectCode    auth.Code
		expectErr     bool
		expectVisited int
	}{
		{
			description: "token issued with csrf handshake",
			request:     Request{EnvironmentID: "123", PermissionScope: "abc"},
		},
		{
			description:   "not logged in redirects to sign-in",
			tokenStatus:   http.StatusUnauthorized,
			expectErr:     true,
			expectCode:    auth.NotLoggedIn,
			expectVisited: 1,
		},
		{
			description: "not logged in without redirect",
			tokenStatus: http.StatusUnauthorized,
			request:     Request{DisableRedirect: true},
			expectErr:   true,
			expectCode:  auth.NotLoggedIn,
		},
		{
			description:   "forbidden is an invalid environment",
			tokenStatus:   http.StatusForbidden,
			request:       Request{EnvironmentID: "nope"},
			expectErr:     true,
			expectCode:    auth.InvalidEnvironment,
			expectVisited: 1,
		},
		{
			description:   "server error is unspecified",
			tokenStatus:   http.StatusInternalServerError,
			expectErr:     true,
			expectCode:    auth.Unspecified,
			expectVisited: 1,
		},
		{
			description: "permission scope without environment never redirects",
			request:     Request{PermissionScope: "abc"},
			expectErr:   true,
			expectCode:  auth.PermissionScopeNoEnvironment,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service.FailTokens(testCase.tokenStatus)
			nav := navigator.NewRecorder(navigator.DefaultURLs())
			client := newTestClient(t, service, nav)
			request := testCase.request
			request.URL = service.URL() + "/token"
			data, err := client.Request(context.Background(), &request)
			assert.Len(t, nav.Visited(), testCase.expectVisited)
			if testCase.expectErr {
				require.Error(t, err)
				assert.Equal(t, testCase.expectCode, auth.CodeOf(err))
				return
			}
			require.NoError(t, err)
			var response struct {
				AccessToken string `json:"access_token"`
				ExpiresIn   int    `json:"expires_in"`
			}
			require.NoError(t, json.Unmarshal(data, &response))
			assert.NotEmpty(t, response.AccessToken)
			assert.Equal(t, 3600, response.ExpiresIn)
		})
	}
	service.FailTokens(0)
	bodies := service.TokenBodies()
	require.NotEmpty(t, bodies)
	assert.Equal(t, map[string]string{"environment_id": "123", "permission_scope": "abc"}, bodies[0])
}

func TestClient_Offline(t *testing.T) {
	nav := navigator.NewRecorder(navigator.DefaultURLs())
	client, err := New(WithCSRFURL("http://127.0.0.1:1/session/csrf"), WithNavigator(nav))
	require.NoError(t, err)
	_, err = client.Request(context.Background(), &Request{URL: "http://127.0.0.1:1/token"})
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrOffline)
	assert.Empty(t, nav.Visited())
}

func TestClient_RequestWithToken(t *testing.T) {
	service, err := mock.NewIdentityService()
	require.NoError(t, err)
	defer service.Close()
	client, err := New()
	require.NoError(t, err)

	_, err = client.RequestWithToken(context.Background(), service.URL()+"/settings", "abc", http.MethodPatch, map[string]any{"theme": "dark"})
	require.NoError(t, err)
	data, err := client.RequestWithToken(context.Background(), service.URL()+"/settings", "abc", "", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))

	_, err = client.RequestWithToken(context.Background(), service.URL()+"/missing", "abc", "", nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_SessionCookie(t *testing.T) {
	service, err := mock.NewIdentityService()
	require.NoError(t, err)
	defer service.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client, err := New(WithCSRFURL(service.URL()+"/session/csrf"), WithHTTPClient(&http.Client{Jar: jar}))
	require.NoError(t, err)

	_, err = client.Request(context.Background(), &Request{URL: service.URL() + "/token", DisableRedirect: true})
	require.NoError(t, err)
	serviceURL, err := url.Parse(service.URL())
	require.NoError(t, err)
	require.Len(t, jar.Cookies(serviceURL), 1)
	assert.Equal(t, "bbid_session", jar.Cookies(serviceURL)[0].Name)

	bare, err := New(WithCSRFURL(service.URL()+"/session/csrf"), WithHTTPClient(&http.Client{}))
	require.NoError(t, err)
	_, err = bare.Request(context.Background(), &Request{URL: service.URL() + "/token", DisableRedirect: true})
	require.NoError(t, err)
	assert.Equal(t, 2, service.TokenCalls())
}
