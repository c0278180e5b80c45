package omnibar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/omnibar/auth/token"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/frame/memory"
	"github.com/viant/omnibar/internal/mock"
	"github.com/viant/omnibar/navigator"
	"github.com/viant/omnibar/session"
	"github.com/viant/omnibar/widget"
)

func mockConfig(service *mock.IdentityService) *Config {
	config := DefaultConfig()
	config.Identity.TokenURL = service.URL() + "/token"
	config.Identity.CSRFURL = service.URL() + "/session/csrf"
	config.Identity.SessionURL = service.URL() + "/session/"
	config.Settings.RemoteURL = service.URL() + "/settings"
	config.Session.Interval = 0
	return config
}

func newMockHost(t *testing.T, options ...Option) (*Host, *mock.IdentityService, *memory.Document) {
	service, err := mock.NewIdentityService()
	require.NoError(t, err)
	t.Cleanup(service.Close)
	config := mockConfig(service)
	doc := memory.New(config.Origin, config.Location)
	options = append([]Option{WithConfig(config), WithDocument(doc), WithNavigator(navigator.NewRecorder(config.urls()))}, options...)
	host, err := New(context.Background(), options...)
	require.NoError(t, err)
	t.Cleanup(host.Destroy)
	return host, service, doc
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/omnibar/config.yaml"
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader(`
origin: https://renxt.blackbaud.com
mock: true
identity:
  tokenURL: https://id.example.com/token
session:
  interval: 2s
  maxSessionAge: 45m
`)))
	config, err := LoadConfig(ctx, URL)
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, "https://renxt.blackbaud.com", config.Origin)
	assert.True(t, config.Mock)
	assert.Equal(t, "https://id.example.com/token", config.Identity.TokenURL)
	assert.Equal(t, defaults.Identity.BridgeURL, config.Identity.BridgeURL)
	assert.Equal(t, 2*time.Second, config.Session.Interval)
	assert.Equal(t, 45*time.Minute, config.Session.MaxSessionAge)
	assert.Equal(t, defaults.Session.MinRenewalAge, config.Session.MinRenewalAge)
	assert.Equal(t, defaults.Widgets, config.Widgets)

	_, err = LoadConfig(ctx, "mem://localhost/omnibar/missing.yaml")
	assert.Error(t, err)
}

func TestConfig_Init(t *testing.T) {
	config := &Config{Origin: "https://host.example.com"}
	config.Init()
	assert.Equal(t, "https://host.example.com/", config.Location)
	assert.Equal(t, token.DefaultTrustedDomain, config.TrustedDomain)
	assert.NotNil(t, config.Identity)
	assert.NotNil(t, config.Redirect)
	assert.NotNil(t, config.Session)
	assert.NotNil(t, config.Settings)
	assert.NotNil(t, config.Widgets)
}

func TestHost_GetToken(t *testing.T) {
	host, service, _ := newMockHost(t)
	ctx := context.Background()

	first, err := host.GetToken(ctx, nil)
	require.NoError(t, err)
	second, err := host.GetToken(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, service.TokenCalls())

	host.ClearTokenCache()
	_, err = host.GetToken(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, service.TokenCalls())
}

func TestHost_Mock(t *testing.T) {
	config := DefaultConfig()
	config.Mock = true
	host, err := New(context.Background(), WithConfig(config), WithNavigator(navigator.NewRecorder(config.urls())))
	require.NoError(t, err)
	defer host.Destroy()

	actual, err := host.GetToken(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, token.MockToken, actual)
}

func TestHost_Settings(t *testing.T) {
	host, service, _ := newMockHost(t)
	service.SetSettings(map[string]any{"theme": map[string]any{"mode": "dark"}})

	actual, err := host.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"theme": map[string]any{"mode": "dark"}}, actual)
}

func TestHost_Tracking(t *testing.T) {
	host, service, doc := newMockHost(t)
	ctx := context.Background()

	require.NoError(t, host.StartTracking(ctx, session.Options{}))
	assert.True(t, host.Session.Tracking())
	assert.NotNil(t, doc.Frame(frame.RoleSessionWatcher))
	assert.Equal(t, 1, service.RenewCalls())

	expiration := time.Now().Add(2 * time.Minute)
	host.showInactivityPrompt(ctx, expiration)
	assert.Eventually(t, func() bool { return doc.Frame(frame.RoleInactivity) != nil }, time.Second, 5*time.Millisecond)
	host.showInactivityPrompt(ctx, expiration.Add(time.Minute))
	assert.Len(t, doc.Frames(frame.RoleInactivity), 1)

	host.closeInactivityPrompt()
	assert.Nil(t, doc.Frame(frame.RoleInactivity))

	host.StopTracking()
	assert.False(t, host.Session.Tracking())
	assert.Nil(t, doc.Frame(frame.RoleSessionWatcher))
}

func TestHost_Widgets(t *testing.T) {
	host, _, doc := newMockHost(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	omnibar := host.Omnibar(widget.NavConfig{})
	_ = omnibar.Load(ctx)
	toast := host.ToastContainer()
	_ = toast.Load(ctx)
	assert.NotNil(t, doc.Frame(frame.RoleOmnibar))
	assert.NotNil(t, doc.Frame(frame.RoleToast))

	host.NotifyLocationChanged("https://app.blackbaud.com/next")

	host.Destroy()
	assert.Nil(t, doc.Frame(frame.RoleOmnibar))
	assert.Nil(t, doc.Frame(frame.RoleToast))
	host.Destroy()
}
