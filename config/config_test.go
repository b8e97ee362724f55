package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_PLAYERS", "SEND_BUFFER", "STATIC_DIR", "NOTE_RATE", "NOTE_BURST", "RELAY_LOCAL_URL", "RELAY_REMOTE_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, c.Port)
	assert.Equal(t, 0, c.MaxPlayers)
	assert.Equal(t, 256, c.SendBuffer)
	assert.Equal(t, float64(0), c.NoteRate, "rate limit is off unless set")
	assert.Equal(t, 60, c.NoteBurst)
	assert.Equal(t, "ws://localhost:3000", c.LocalURL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, ":3000", c.Addr())
	assert.NoError(t, c.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_PLAYERS", "2")
	t.Setenv("STATIC_DIR", "./public")
	t.Setenv("NOTE_RATE", "0.5")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, 2, c.MaxPlayers)
	assert.Equal(t, "./public", c.StaticDir)
	assert.Equal(t, 0.5, c.NoteRate)
	assert.Equal(t, "debug", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("PORT", "abc")
	_, err := Load()
	assert.ErrorContains(t, err, "PORT")

	t.Setenv("PORT", "")
	t.Setenv("NOTE_RATE", "fast")
	_, err = Load()
	assert.ErrorContains(t, err, "NOTE_RATE")
}

func TestValidate(t *testing.T) {
	c := &Config{Port: 0, MaxPlayers: -1, SendBuffer: 0, NoteRate: 5, NoteBurst: 0, LogLevel: "loud", LogFormat: "xml"}

	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "MAX_PLAYERS", "SEND_BUFFER", "NOTE_BURST", "LOG_LEVEL", "LOG_FORMAT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := c.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "clientId", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "abc", line["clientId"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
