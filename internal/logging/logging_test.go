package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		" warn ":  WARN,
		"ERROR":   ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.level = WARN

	l.Info("hidden")
	l.Debug("hidden too")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.format = JSON

	l.Error("scan failed", errors.New("boom"), map[string]interface{}{"scanner": "EBS Volumes"})

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "scan failed: boom", entry.Message)
	data, ok := entry.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "EBS Volumes", data["scanner"])
}

func TestEnabled(t *testing.T) {
	l := New(&bytes.Buffer{})
	l.level = ERROR
	assert.False(t, l.Enabled(WARN))
	assert.True(t, l.Enabled(ERROR))
}

func TestPackageEnabledFollowsConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(LogConfig{Level: INFO, Format: Text}) })

	Configure(LogConfig{Level: DEBUG})
	assert.True(t, Enabled(DEBUG))

	Configure(LogConfig{Level: WARN})
	assert.False(t, Enabled(INFO))
	assert.True(t, Enabled(ERROR))
}
