package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollclock/core"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithJSON(true), WithSetDefault(false), WithOutput(&buf), WithLevel("warn"))

	logger.Info("dropped")
	logger.Warn("kept", slog.Int("ticks", 8))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, 8.0, entry["ticks"])
}

func TestWithLevelFallback(t *testing.T) {
	var o Options
	WithLevel("loud")(&o)
	assert.Equal(t, slog.LevelInfo, o.Level)
}

func TestBridgeCoreDebug(t *testing.T) {
	defer core.SetDebugWriter(func(string) {})
	defer core.SetDebugEnabled(false)

	var buf bytes.Buffer
	BridgeCoreDebug(NewLogger(WithSetDefault(false), WithOutput(&buf), WithLevel("debug")))
	require.True(t, core.IsDebugEnabled())

	core.DebugPrintln("[TIMER] hello ")
	assert.Contains(t, buf.String(), "[TIMER] hello")
	assert.Contains(t, buf.String(), "source=core")

	BridgeCoreDebug(NewLogger(WithSetDefault(false), WithOutput(&buf)))
	assert.False(t, core.IsDebugEnabled())
}
