package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) line {
	t.Helper()
	var rec line
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestLogger_EmitsOneJSONObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelDebug})

	log.Info("entry recorded", String("class_id", "c1"), Float64("points", -2.5))

	rec := decodeLine(t, &buf)
	assert.Equal(t, "INFO", rec.Level)
	assert.Equal(t, "entry recorded", rec.Message)
	assert.Equal(t, "c1", rec.Fields["class_id"])
	assert.InDelta(t, -2.5, rec.Fields["points"].(float64), 1e-9)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("dropped")
	log.Info("dropped too")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Output: &buf, Level: LevelDebug})
	child := parent.With(String("component", "scoring"))

	parent.Info("bare")
	rec := decodeLine(t, &buf)
	assert.Nil(t, rec.Fields)

	buf.Reset()
	child.Info("tagged")
	rec = decodeLine(t, &buf)
	assert.Equal(t, "scoring", rec.Fields["component"])
}

func TestLogger_PerCallFieldWinsOverBase(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).With(String("week_id", "w1"))

	log.Info("relocked", WeekID("w2"))

	rec := decodeLine(t, &buf)
	assert.Equal(t, "w2", rec.Fields["week_id"])
}

func TestLogger_CallerAnnotation(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, AddCaller: true})

	log.Info("located")

	rec := decodeLine(t, &buf)
	assert.True(t, strings.HasPrefix(rec.Caller, "logger_test.go:"), "caller = %q", rec.Caller)
}

func TestLogger_ErrField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	log.Error("failed", Err(errors.New("boom")))
	rec := decodeLine(t, &buf)
	assert.Equal(t, "boom", rec.Fields["error"])

	buf.Reset()
	log.Error("no cause", Err(nil))
	rec = decodeLine(t, &buf)
	assert.Nil(t, rec.Fields["error"])
}

func TestLogger_FatalExitsOnce(t *testing.T) {
	var buf bytes.Buffer
	var code int
	orig := exit
	exit = func(c int) { code = c }
	defer func() { exit = orig }()

	New(Options{Output: &buf}).Fatal("unrecoverable")

	assert.Equal(t, 1, code)
	rec := decodeLine(t, &buf)
	assert.Equal(t, "FATAL", rec.Level)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelFatal, ParseLevel("Fatal"))
	assert.Equal(t, LevelInfo, ParseLevel("chatty"), "unknown names default to Info")
}

func TestFromContext_Fallback(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).WithRequestID("req-42")

	log.Info("traced", Latency(15*time.Millisecond))

	rec := decodeLine(t, &buf)
	assert.Equal(t, "req-42", rec.Fields[RequestIDKey])
	assert.Equal(t, "15ms", rec.Fields["latency"])
}
