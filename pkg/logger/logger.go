// Package logger emits structured JSON log lines for School Merit Hub.
// Loggers are cheap to copy with With, carry a minimum level, and can
// travel through a context.Context across request boundaries.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level orders log severities from Debug up to Fatal.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if l < LevelDebug || l > LevelFatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads a level name, case-insensitively. Unrecognised input
// falls back to Info so a typo in an env var never silences the log.
func ParseLevel(s string) Level {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i)
		}
	}
	return LevelInfo
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a field from an arbitrary value.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Typed field constructors.
func String(key, value string) Field          { return F(key, value) }
func Int(key string, value int) Field         { return F(key, value) }
func Int64(key string, value int64) Field     { return F(key, value) }
func Float64(key string, value float64) Field { return F(key, value) }
func Bool(key string, value bool) Field       { return F(key, value) }
func Any(key string, value any) Field         { return F(key, value) }

// Duration renders as its String form so the log stays human-readable.
func Duration(key string, d time.Duration) Field { return F(key, d.String()) }

// Time renders in RFC 3339.
func Time(key string, t time.Time) Field { return F(key, t.Format(time.RFC3339)) }

// Err records an error under the "error" key. A nil error logs as null,
// which keeps call sites free of nil checks.
func Err(err error) Field {
	if err == nil {
		return F("error", nil)
	}
	return F("error", err.Error())
}

// Options configures a Logger. The zero value logs Info and above to
// stdout without caller annotations.
type Options struct {
	Output     io.Writer
	Level      Level
	AddCaller  bool
	CallerSkip int
}

// DefaultOptions is the configuration used by Default.
func DefaultOptions() Options {
	return Options{Output: os.Stdout, Level: LevelInfo, AddCaller: true}
}

// Logger writes one JSON object per line. Safe for concurrent use; the
// mutex serialises writes so lines never interleave.
type Logger struct {
	mu         sync.Mutex
	output     io.Writer
	level      Level
	fields     []Field
	addCaller  bool
	callerSkip int
}

// New creates a Logger from opts. A nil Output means stdout.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		output:     out,
		level:      opts.Level,
		addCaller:  opts.AddCaller,
		callerSkip: opts.CallerSkip,
	}
}

// Default returns a Logger built from DefaultOptions.
func Default() *Logger { return New(DefaultOptions()) }

// clone copies the logger so derived loggers never share field slices.
func (l *Logger) clone() *Logger {
	c := &Logger{
		output:     l.output,
		level:      l.level,
		addCaller:  l.addCaller,
		callerSkip: l.callerSkip,
	}
	c.fields = append(c.fields, l.fields...)
	return c
}

// With returns a logger that attaches the given fields to every line.
func (l *Logger) With(fields ...Field) *Logger {
	c := l.clone()
	c.fields = append(c.fields, fields...)
	return c
}

// WithLevel returns a logger with a different minimum level.
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// line is the wire shape of one emitted log record.
type line struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Caller    string         `json:"caller,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// caller reports the file:line of the log call site. skip counts from
// the exported Debug/Info/... wrapper.
func (l *Logger) caller() string {
	_, file, ln, ok := runtime.Caller(3 + l.callerSkip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), ln)
}

func (l *Logger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	rec := line{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
	}
	if l.addCaller {
		rec.Caller = l.caller()
	}

	// Per-call fields land after the base fields so they win on a
	// duplicate key.
	if n := len(l.fields) + len(fields); n > 0 {
		rec.Fields = make(map[string]any, n)
		for _, f := range l.fields {
			rec.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			rec.Fields[f.Key] = f.Value
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	enc := json.NewEncoder(l.output)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		// A value that refuses to marshal still deserves a trace.
		fmt.Fprintf(l.output, "%s [%s] %s\n", rec.Timestamp, rec.Level, msg)
	}
}

// exit is swapped out in tests so Fatal paths stay observable.
var exit = os.Exit

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(LevelError, msg, fields) }

// Fatal logs the message and terminates the process.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.emit(LevelFatal, msg, fields)
	exit(1)
}

// Printf-style variants for messages without structured fields.
func (l *Logger) Debugf(format string, args ...any) {
	l.emit(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...any) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.emit(LevelError, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Fatalf(format string, args ...any) {
	l.emit(LevelFatal, fmt.Sprintf(format, args...), nil)
	exit(1)
}

type ctxKey struct{}

// WithContext attaches the logger to a context.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or Default when the
// context carries none.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// RequestIDKey is the field key used for request correlation.
const RequestIDKey = "request_id"

// WithRequestID tags every line with the request's correlation id.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(String(RequestIDKey, requestID))
}

// Field helpers for the scoring domain.
func ActorID(id string) Field         { return String("actor_id", id) }
func WeekID(id string) Field          { return String("week_id", id) }
func ClassID(id string) Field         { return String("class_id", id) }
func EntryID(id string) Field         { return String("entry_id", id) }
func PointsDelta(delta float64) Field { return Float64("points_delta", delta) }
func StudentCount(count int) Field    { return Int("student_count", count) }
func LockTarget(t, id string) Field   { return String("lock_target", t+":"+id) }
func Component(name string) Field     { return String("component", name) }
func Operation(name string) Field     { return String("operation", name) }
func Latency(d time.Duration) Field   { return Duration("latency", d) }
