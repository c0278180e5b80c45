package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	_, ok := s.LookupToken(DefaultKey)
	assert.False(t, ok)

	require.NoError(t, s.AddToken(DefaultKey, &oauth2.Token{AccessToken: "abc"}))
	token, ok := s.LookupToken(DefaultKey)
	require.True(t, ok)
	assert.Equal(t, "abc", token.AccessToken)
	assert.Equal(t, []TokenKey{DefaultKey}, s.Keys())

	require.NoError(t, s.Clear())
	_, ok = s.LookupToken(DefaultKey)
	assert.False(t, ok)
}

func TestFileStore_Reload(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/omnibar/store_test/tokens.json"
	key := TokenKey{EnvironmentID: "123", PermissionScope: "abc"}
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	s, err := NewFileStore(ctx, URL)
	require.NoError(t, err)
	require.NoError(t, s.AddToken(key, &oauth2.Token{AccessToken: "xyz", Expiry: expiry}))

	reloaded, err := NewFileStore(ctx, URL)
	require.NoError(t, err)
	token, ok := reloaded.LookupToken(key)
	require.True(t, ok)
	assert.Equal(t, "xyz", token.AccessToken)
	assert.True(t, expiry.Equal(token.Expiry))

	require.NoError(t, reloaded.Clear())
	again, err := NewFileStore(ctx, URL)
	require.NoError(t, err)
	assert.Empty(t, again.Keys())
}

func TestTokenKey_String(t *testing.T) {
	testCases := []struct {
		description string
		key         TokenKey
	}{
		{description: "default", key: DefaultKey},
		{description: "plain", key: TokenKey{EnvironmentID: "123", PermissionScope: "abc"}},
		{description: "separator in environment", key: TokenKey{EnvironmentID: "a|b", PermissionScope: "-"}},
		{description: "separator in scope", key: TokenKey{EnvironmentID: "a", PermissionScope: "b|-"}},
		{description: "quotes", key: TokenKey{EnvironmentID: `"a"|`, PermissionScope: `|"b`}},
	}
	seen := map[string]TokenKey{}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			encoded := testCase.key.String()
			if other, ok := seen[encoded]; ok {
				t.Fatalf("%v collides with %v", testCase.key, other)
			}
			seen[encoded] = testCase.key
			decoded, err := ParseTokenKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, testCase.key, decoded)
		})
	}

	_, err := ParseTokenKey("a|b")
	assert.Error(t, err)
}

func TestFileStore_SeparatorInKeys(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/omnibar/store_test/separator.json"
	first := TokenKey{EnvironmentID: "a|b", PermissionScope: "-"}
	second := TokenKey{EnvironmentID: "a", PermissionScope: "b|-"}

	s, err := NewFileStore(ctx, URL)
	require.NoError(t, err)
	require.NoError(t, s.AddToken(first, &oauth2.Token{AccessToken: "first"}))
	require.NoError(t, s.AddToken(second, &oauth2.Token{AccessToken: "second"}))

	reloaded, err := NewFileStore(ctx, URL)
	require.NoError(t, err)
	token, ok := reloaded.LookupToken(first)
	require.True(t, ok)
	assert.Equal(t, "first", token.AccessToken)
	token, ok = reloaded.LookupToken(second)
	require.True(t, ok)
	assert.Equal(t, "second", token.AccessToken)
}
