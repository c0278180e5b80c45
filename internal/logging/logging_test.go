package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name      string
		expect    LogLevel
		expectErr bool
	}{
		{name: "debug", expect: LevelDebug},
		{name: "INFO", expect: LevelInfo},
		{name: "", expect: LevelInfo},
		{name: "warning", expect: LevelWarn},
		{name: "error", expect: LevelError},
		{name: "verbose", expect: LevelInfo, expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := ParseLevel(testCase.name)
		if testCase.expectErr {
			assert.Error(t, err, testCase.name)
		} else {
			require.NoError(t, err, testCase.name)
		}
		assert.Equal(t, testCase.expect, actual, testCase.name)
	}
}

func TestNew(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := New(LevelWarn, buffer, true)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buffer.String(), "hidden")
	assert.Contains(t, buffer.String(), `"msg":"shown"`)
	assert.Contains(t, buffer.String(), `"key":"value"`)
}
