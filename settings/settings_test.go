package settings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/internal/mock"
	"github.com/viant/omnibar/transport"
)

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) GetToken(ctx context.Context, args *auth.TokenArgs) (string, error) {
	return f.token, f.err
}

type slowTransport struct {
	transport.Transport
	delay time.Duration
}

func (s *slowTransport) RequestWithToken(ctx context.Context, URL, token, verb string, body any) (json.RawMessage, error) {
	time.Sleep(s.delay)
	return json.RawMessage(`{"late":true}`), nil
}

func TestLocal_Update(t *testing.T) {
	ctx := context.Background()
	local := NewLocal("mem://localhost/settings/" + t.Name() + ".json")

	settings, err := local.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings)

	require.NoError(t, local.Update(ctx, "omnibar", map[string]any{"theme": "dark", "pinned": true}))
	require.NoError(t, local.Update(ctx, "omnibar", map[string]any{"theme": "light"}))
	require.NoError(t, local.Update(ctx, "other", map[string]any{"x": 1}))

	settings, err = local.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"omnibar": map[string]any{"theme": "light", "pinned": true},
		"other":   map[string]any{"x": float64(1)},
	}, settings)

	reopened := NewLocal(local.URL)
	settings, err = reopened.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
}

func newRemote(t *testing.T, debounce time.Duration) (*Remote, *mock.IdentityService) {
	service, err := mock.NewIdentityService()
	require.NoError(t, err)
	t.Cleanup(service.Close)
	client, err := transport.New()
	require.NoError(t, err)
	return NewRemote(client, service.URL()+"/settings", time.Second, debounce, nil), service
}

func TestRemote_Get(t *testing.T) {
	remote, service := newRemote(t, 0)
	service.SetSettings(map[string]any{"omnibar": map[string]any{"theme": "dark"}})
	settings, err := remote.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"omnibar": map[string]any{"theme": "dark"}}, settings)
}

func TestRemote_GetTimeout(t *testing.T) {
	remote := NewRemote(&slowTransport{delay: 200 * time.Millisecond}, "https://settings.example.com/", 20*time.Millisecond, 0, nil)
	started := time.Now()
	settings, err := remote.Get(context.Background(), "token")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, settings)
	assert.Less(t, time.Since(started), 200*time.Millisecond)
}

func TestRemote_UpdateDebounced(t *testing.T) {
	remote, service := newRemote(t, 30*time.Millisecond)
	remote.Update("token", "omnibar", map[string]any{"theme": "dark"})
	remote.Update("token", "omnibar", map[string]any{"theme": "blue"})
	remote.Update("token", "omnibar", map[string]any{"theme": "light"})

	require.Eventually(t, func() bool { return service.SettingsUpdates() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, service.SettingsUpdates())
	assert.Equal(t, map[string]any{"omnibar": map[string]any{"theme": "light"}}, service.Settings())
}

func TestRemote_Flush(t *testing.T) {
	remote, service := newRemote(t, time.Hour)
	remote.Update("token", "omnibar", map[string]any{"theme": "dark"})
	remote.Flush()
	assert.Equal(t, 1, service.SettingsUpdates())
	remote.Flush()
	assert.Equal(t, 1, service.SettingsUpdates())
}

func TestService(t *testing.T) {
	ctx := context.Background()
	remote, service := newRemote(t, time.Hour)
	local := NewLocal("mem://localhost/settings/" + t.Name() + ".json")

	t.Run("signed out uses local", func(t *testing.T) {
		settingsService := NewService(&fakeTokens{err: auth.NewError(auth.NotLoggedIn, "")}, local, remote)
		require.NoError(t, settingsService.Update(ctx, "omnibar", map[string]any{"theme": "dark"}))
		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"omnibar": map[string]any{"theme": "dark"}}, settings)
		remote.Flush()
		assert.Equal(t, 0, service.SettingsUpdates())
	})

	t.Run("signed in uses remote", func(t *testing.T) {
		settingsService := NewService(&fakeTokens{token: "token"}, local, remote)
		require.NoError(t, settingsService.Update(ctx, "omnibar", map[string]any{"theme": "light"}))
		remote.Flush()
		assert.Equal(t, 1, service.SettingsUpdates())
		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"omnibar": map[string]any{"theme": "light"}}, settings)
	})

	t.Run("other token failures surface", func(t *testing.T) {
		settingsService := NewService(&fakeTokens{err: auth.NewError(auth.Offline, "")}, local, remote)
		_, err := settingsService.Get(ctx)
		assert.Equal(t, auth.Offline, auth.CodeOf(err))
	})
}
