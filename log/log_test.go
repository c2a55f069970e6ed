package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger captures log messages for testing
type testLogger struct {
	messages []testMessage
}

type testMessage struct {
	level  string
	msg    string
	fields []Field
}

func (l *testLogger) Debug(msg string, fields ...Field) {
	l.messages = append(l.messages, testMessage{"debug", msg, fields})
}

func (l *testLogger) Info(msg string, fields ...Field) {
	l.messages = append(l.messages, testMessage{"info", msg, fields})
}

func (l *testLogger) Warn(msg string, fields ...Field) {
	l.messages = append(l.messages, testMessage{"warn", msg, fields})
}

func (l *testLogger) Error(msg string, fields ...Field) {
	l.messages = append(l.messages, testMessage{"error", msg, fields})
}

func TestSetLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	custom := &testLogger{}
	SetLogger(custom)
	assert.Equal(t, custom, GetLogger())

	// nil resets to the no-op logger
	SetLogger(nil)
	_, ok := GetLogger().(*noopLogger)
	assert.True(t, ok, "nil should set noop logger")
}

func TestGlobalLogFunctions(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	capture := &testLogger{}
	SetLogger(capture)

	Debug("probing header", F("phase", 2))
	Info("band decoded")
	Warn("bad lander number", F("lander", 3))
	Error("header is not intact")

	require.Len(t, capture.messages, 4)
	assert.Equal(t, "debug", capture.messages[0].level)
	assert.Equal(t, "probing header", capture.messages[0].msg)
	assert.Equal(t, Field{Key: "phase", Value: 2}, capture.messages[0].fields[0])
	assert.Equal(t, "info", capture.messages[1].level)
	assert.Equal(t, "warn", capture.messages[2].level)
	assert.Equal(t, "error", capture.messages[3].level)
}

func TestNoopLogger(t *testing.T) {
	l := Noop()
	// Must not panic and must not produce output anywhere.
	l.Debug("x")
	l.Info("x", F("k", "v"))
	l.Warn("x")
	l.Error("x")
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).Level(zerolog.DebugLevel)
	adapter := NewZerologAdapter(zlog)

	adapter.Info("decoding band",
		F("file", "vl_1529.008"),
		F("sol", 97),
		F("ok", true),
	)

	out := buf.String()
	assert.Contains(t, out, `"message":"decoding band"`)
	assert.Contains(t, out, `"file":"vl_1529.008"`)
	assert.Contains(t, out, `"sol":97`)
	assert.Contains(t, out, `"ok":true`)
}

func TestZerologAdapterLevels(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).Level(zerolog.DebugLevel)
	adapter := NewZerologAdapter(zlog)

	adapter.Debug("d")
	adapter.Info("i")
	adapter.Warn("w")
	adapter.Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"level":"debug"`)
	assert.Contains(t, lines[1], `"level":"info"`)
	assert.Contains(t, lines[2], `"level":"warn"`)
	assert.Contains(t, lines[3], `"level":"error"`)
}
