// Package logger provides a minimal leveled logger over the standard
// library log package.
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level is a log severity level.
type Level int32

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
)

var current atomic.Int32

func init() {
	current.Store(int32(InfoLevel))
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	case "panic":
		return PanicLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// SetLevel sets the global log level.
func SetLevel(l Level) {
	current.Store(int32(l))
}

func enabled(l Level) bool {
	return l >= Level(current.Load())
}

func logf(l Level, tag, format string, args ...any) {
	if !enabled(l) {
		return
	}
	log.Printf("["+tag+"] "+format, args...)
}

func Tracef(format string, args ...any) { logf(TraceLevel, "TRACE", format, args...) }
func Debugf(format string, args ...any) { logf(DebugLevel, "DEBUG", format, args...) }
func Infof(format string, args ...any)  { logf(InfoLevel, "INFO", format, args...) }
func Warnf(format string, args ...any)  { logf(WarnLevel, "WARN", format, args...) }
func Errorf(format string, args ...any) { logf(ErrorLevel, "ERROR", format, args...) }

// Fatalf logs at fatal level and exits.
func Fatalf(format string, args ...any) {
	log.Fatalf("[FATAL] "+format, args...)
}
