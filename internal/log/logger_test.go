package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/internal/config"
)

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.Info("indexed convention", "convention_id", int64(7), "indexed", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "indexed convention", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 7, entry["convention_id"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Debug("dropped")
	logger.Info("dropped too")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestPrettyHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatPretty, "INFO")

	logger.Info("answered question", "intent", "event", "note", "two words")

	out := buf.String()
	assert.Contains(t, out, "INFO ")
	assert.Contains(t, out, "answered question")
	assert.Contains(t, out, "intent=")
	assert.Contains(t, out, `"two words"`, "values with spaces are quoted")

	buf.Reset()
	logger.Debug("dropped")
	assert.Zero(t, buf.Len())
}

func TestPrettyHandlerGroupsAndPresetAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := newTerminalHandler(&buf, nil)

	h := base.WithAttrs([]slog.Attr{slog.String("component", "indexer")})
	h = h.WithGroup("convention")
	slog.New(h).Info("rebuilt", "id", 7)

	out := buf.String()
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "convention.id=")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{"WARNING", "WARN"},
		{"ERROR", "ERROR"},
		{"", "INFO"},
		{"garbage", "INFO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in).String(), "input %q", tt.in)
	}
}

func TestWithContextAttachesIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithRequestID(ctx, "req-2")

	logger.WithContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, "req-2", entry["request_id"])

	assert.Equal(t, "corr-1", CorrelationID(ctx))
	assert.Equal(t, "req-2", RequestID(ctx))
	assert.Empty(t, CorrelationID(context.Background()))
}
