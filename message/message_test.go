package message

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/omnibar/frame"
	"github.com/viant/omnibar/frame/memory"
)

func TestValidator_Accept(t *testing.T) {
	validator := NewValidator(SourceOmnibar, DefaultTrustedOrigin)
	testCases := []struct {
		description string
		event       frame.Event
		expectType  string
		expectOK    bool
	}{
		{
			description: "valid structured envelope",
			event:       frame.Event{Origin: DefaultTrustedOrigin, Data: map[string]any{"source": SourceOmnibar, "messageType": "ready"}},
			expectType:  "ready",
			expectOK:    true,
		},
		{
			description: "wrong origin",
			event:       frame.Event{Origin: "https://evil.example.com", Data: map[string]any{"source": SourceOmnibar, "messageType": "ready"}},
		},
		{
			description: "wrong source tag",
			event:       frame.Event{Origin: DefaultTrustedOrigin, Data: map[string]any{"source": SourceToastContainer, "messageType": "ready"}},
		},
		{
			description: "string payload on structured channel",
			event:       frame.Event{Origin: DefaultTrustedOrigin, Data: `{"source":"skyux-spa-omnibar","messageType":"ready"}`},
		},
		{
			description: "not an object",
			event:       frame.Event{Origin: DefaultTrustedOrigin, Data: 42},
		},
	}
	for _, testCase := range testCases {
		envelope, ok := validator.Accept(testCase.event)
		assert.Equal(t, testCase.expectOK, ok, testCase.description)
		if ok {
			assert.Equal(t, testCase.expectType, envelope.MessageType, testCase.description)
		}
	}
}

func TestOriginValidator_Accept(t *testing.T) {
	validator := OriginValidator{Origin: "https://s21anavnavbarblkbapp01.sky.blackbaud.com"}
	envelope, ok := validator.Accept(frame.Event{Origin: validator.Origin, Data: `{"messageType":"session_change","message":{"sessionId":"s1"}}`})
	require.True(t, ok)
	assert.Equal(t, "session_change", envelope.MessageType)

	var decoded struct {
		Message struct {
			SessionID string `json:"sessionId"`
		} `json:"message"`
	}
	require.NoError(t, envelope.Decode(&decoded))
	assert.Equal(t, "s1", decoded.Message.SessionID)

	for _, data := range []any{"not json", "{}", map[string]any{"messageType": "session_change"}, nil} {
		_, ok = validator.Accept(frame.Event{Origin: validator.Origin, Data: data})
		assert.False(t, ok, "%v", data)
	}
	_, ok = validator.Accept(frame.Event{Origin: "https://other", Data: `{"messageType":"session_change"}`})
	assert.False(t, ok)
}

func TestPoster(t *testing.T) {
	window := &memory.Window{}
	poster := &Poster{Window: window, TargetOrigin: DefaultTrustedOrigin, Source: SourceAuthClient}
	require.NoError(t, poster.Post("token", map[string]any{"messageId": "m1", "token": "abc"}))
	require.NoError(t, poster.PostString("renew", nil))

	messages := window.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, DefaultTrustedOrigin, messages[0].TargetOrigin)
	assert.Equal(t, map[string]any{"source": SourceAuthClient, "messageType": "token", "messageId": "m1", "token": "abc"}, messages[0].Data)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(messages[1].Data.(string)), &second))
	assert.Equal(t, "renew", second["messageType"])

	var nilPoster *Poster
	assert.Error(t, nilPoster.Post("x", nil))
}

func TestTable(t *testing.T) {
	t.Run("replies settle their own request", func(t *testing.T) {
		table := NewTable[string](time.Second)
		first, second := table.Open(), table.Open()
		oldest, ok := table.Oldest()
		require.True(t, ok)
		assert.Equal(t, first.ID, oldest)

		var wg sync.WaitGroup
		results := make([]string, 2)
		for i, p := range []*Pending[string]{first, second} {
			wg.Add(1)
			go func(i int, p *Pending[string]) {
				defer wg.Done()
				results[i], _ = table.Wait(context.Background(), p)
			}(i, p)
		}
		require.NoError(t, table.Complete(second.ID, "two"))
		require.NoError(t, table.Complete(first.ID, "one"))
		wg.Wait()
		assert.Equal(t, []string{"one", "two"}, results)
		assert.ErrorIs(t, table.Complete(first.ID, "again"), ErrNotFound)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("timeout", func(t *testing.T) {
		table := NewTable[string](10 * time.Millisecond)
		p := table.Open()
		_, err := table.Wait(context.Background(), p)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("fail all", func(t *testing.T) {
		table := NewTable[string](0)
		p := table.Open()
		boom := errors.New("boom")
		table.FailAll(boom)
		_, err := table.Wait(context.Background(), p)
		assert.ErrorIs(t, err, boom)
	})
}
