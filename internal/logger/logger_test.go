package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestConfigure_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Configure(&buf, "json", "warn")
	t.Cleanup(func() { SetLevel("info") })

	l.Info("hidden")
	l.Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, "v", line["k"])
}

func TestConfigure_Text(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "text", "debug")
	t.Cleanup(func() { SetLevel("info") })

	L.Debug("hello", "n", 1)
	require.Contains(t, buf.String(), "msg=hello")
	require.Contains(t, buf.String(), "n=1")
}
