package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/frame/memory"
)

func TestSingleton(t *testing.T) {
	doc := memory.New("https://app.blackbaud.com", "https://app.blackbaud.com/")
	singleton := frame.NewSingleton(doc, frame.Spec{Role: frame.RoleSessionWatcher, URL: "https://watch/", Hidden: true})

	first, created, err := singleton.Ensure()
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := singleton.Ensure()
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)
	assert.Len(t, doc.Frames(frame.RoleSessionWatcher), 1)

	replaced, err := singleton.Replace()
	require.NoError(t, err)
	assert.NotSame(t, first, replaced)
	assert.True(t, first.(*memory.Frame).Removed())
	assert.Len(t, doc.Frames(frame.RoleSessionWatcher), 1)

	singleton.Destroy()
	singleton.Destroy()
	assert.Nil(t, singleton.Current())
	assert.Empty(t, doc.Frames(frame.RoleSessionWatcher))
}
