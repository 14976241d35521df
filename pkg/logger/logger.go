// Package logger provides structured JSON logging with context support.
//
// Entries are written as one JSON object per line. A logger can carry
// persistent fields (WithFields) and pick up the request and trace ids
// stored in a context (WithContext).
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	// FatalLevel logs and then calls os.Exit(1).
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a textual level ("debug", "INFO", "warning", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the logging interface used across the service.
type Logger interface {
	SetLevel(level Level)
	GetLevel() Level

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	WithContext(ctx context.Context) Logger
	WithFields(fields ...Field) Logger

	Writer() io.Writer
}

// Entry represents a single log line.
type Entry struct {
	Time    string                 `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Caller  string                 `json:"caller,omitempty"`
}

// DefaultLogger is the JSON logger implementation. Loggers derived with
// WithFields share the parent's level and output lock.
type DefaultLogger struct {
	core       *core
	fields     []Field
	timeFormat string
	caller     bool
}

type core struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
}

// Config holds logger configuration.
type Config struct {
	Level      Level
	Output     io.Writer
	TimeFormat string
	Caller     bool
}

// DefaultConfig returns default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stdout,
		TimeFormat: time.RFC3339Nano,
		Caller:     true,
	}
}

// New creates a new logger with the given configuration.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}

	return &DefaultLogger{
		core:       &core{level: cfg.Level, output: cfg.Output},
		timeFormat: cfg.TimeFormat,
		caller:     cfg.Caller,
	}
}

// Default returns a logger with default configuration.
func Default() Logger {
	return New(DefaultConfig())
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return New(&Config{Level: FatalLevel + 1, Output: io.Discard})
}

func (l *DefaultLogger) SetLevel(level Level) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.level = level
}

func (l *DefaultLogger) GetLevel() Level {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.level
}

func (l *DefaultLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *DefaultLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *DefaultLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *DefaultLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// Fatal logs a fatal message and exits.
func (l *DefaultLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields...)
	os.Exit(1)
}

// WithContext returns a logger carrying the request and trace ids found in ctx.
func (l *DefaultLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(extractContextFields(ctx)...)
}

// WithFields returns a logger with additional persistent fields.
func (l *DefaultLogger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &DefaultLogger{
		core:       l.core,
		fields:     merged,
		timeFormat: l.timeFormat,
		caller:     l.caller,
	}
}

// Writer returns the logger's output writer.
func (l *DefaultLogger) Writer() io.Writer {
	return l.core.output
}

func (l *DefaultLogger) log(level Level, msg string, fields ...Field) {
	if level < l.GetLevel() {
		return
	}

	entry := Entry{
		Time:    time.Now().Format(l.timeFormat),
		Level:   level.String(),
		Message: msg,
	}

	if n := len(l.fields) + len(fields); n > 0 {
		entry.Fields = make(map[string]interface{}, n)
		for _, f := range l.fields {
			entry.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	if l.caller {
		entry.Caller = getCaller(3)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: marshal entry: %v\n", err)
		return
	}
	data = append(data, '\n')

	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	_, _ = l.core.output.Write(data)
}

func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	traceIDKey   contextKey = "trace_id"
)

func extractContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}

	var fields []Field
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, String("request_id", requestID))
	}
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		fields = append(fields, String("trace_id", traceID))
	}
	return fields
}

// WithRequestID adds a request ID to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTraceID adds a trace ID to ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration records the duration in its String form ("1.5s").
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error creates an "error" field. A nil error yields a null value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }
