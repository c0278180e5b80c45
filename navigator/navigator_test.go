package navigator

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/omnibar/auth"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder(DefaultURLs())

	rec.RedirectToSignIn("https://app.blackbaud.com/page?a=1", map[string]string{"envid": "e1"})
	rec.RedirectToError(auth.InvalidEnvironment)
	rec.RedirectToSignOut("https://app.blackbaud.com/", true)
	rec.Navigate("https://x/")

	visited := rec.Visited()
	require.Len(t, visited, 4)

	signIn, err := url.Parse(visited[0])
	require.NoError(t, err)
	assert.Equal(t, "https://app.blackbaud.com/page?a=1", signIn.Query().Get("redirectUrl"))
	assert.Equal(t, "e1", signIn.Query().Get("envid"))

	errorPage, err := url.Parse(visited[1])
	require.NoError(t, err)
	assert.Equal(t, "2", errorPage.Query().Get("errorCode"))

	signOut, err := url.Parse(visited[2])
	require.NoError(t, err)
	assert.Equal(t, "1", signOut.Query().Get("inactivity"))
	assert.Equal(t, "https://x/", visited[3])

	rec.Reset()
	assert.Empty(t, rec.Visited())
}
