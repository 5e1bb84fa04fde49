package respcodec

import (
	"fmt"
	"log"
)

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Logger interface for custom logging implementations
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// MetricsCollector interface for codec metrics collection
type MetricsCollector interface {
	// RecordDecode records a successfully decoded message and its wire size
	RecordDecode(bytes int)

	// RecordEncode records an encoded message and its wire size
	RecordEncode(bytes int)

	// RecordProtocolError records a fatal protocol error by stage
	// ("decode" or "encode")
	RecordProtocolError(stage string)
}

// nopLogger discards all log output. It is the default: the codec sits
// on the per-message hot path, so logging is strictly opt-in.
type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...Field) {}
func (nopLogger) Info(msg string, fields ...Field)  {}
func (nopLogger) Error(msg string, fields ...Field) {}

// NewStdLogger returns a Logger backed by the standard log package,
// suitable for the server subpackage and for debugging.
func NewStdLogger() Logger {
	return &defaultLogger{}
}

// defaultLogger is a simple logger implementation using the standard log package
type defaultLogger struct{}

func (l *defaultLogger) Debug(msg string, fields ...Field) {
	l.logWithFields("DEBUG", msg, fields...)
}

func (l *defaultLogger) Info(msg string, fields ...Field) {
	l.logWithFields("INFO", msg, fields...)
}

func (l *defaultLogger) Error(msg string, fields ...Field) {
	l.logWithFields("ERROR", msg, fields...)
}

func (l *defaultLogger) logWithFields(level, msg string, fields ...Field) {
	logMsg := level + ": " + msg
	for _, field := range fields {
		logMsg += " " + field.Key + "=" + formatValue(field.Value)
	}
	log.Println(logMsg)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}
