// Package util provides low-level helpers shared by all other packages.
package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// Logger writes levelled status lines to stderr. Accept/close notices,
// session diagnostics, and debug traces all go through here so that
// tests can capture them and quiet mode can drop them.
type Logger struct {
	level      LogLevel
	output     io.Writer
	mu         sync.Mutex
	timestamps bool
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug). Debug
// verbosity also turns on timestamps.
func NewLogger(verbosity int) *Logger {
	return &Logger{
		level:      LogLevel(verbosity),
		output:     os.Stderr,
		timestamps: verbosity >= 3,
	}
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) { l.timestamps = on }

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) { l.output = w }

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// Error always prints regardless of verbosity. Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	l.write("ERR", format, args...)
}

// Warn prints when verbosity ≥ 1. Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogNormal {
		l.write("WRN", format, args...)
	}
}

// Info prints when verbosity ≥ 1. Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogNormal {
		l.write("INF", format, args...)
	}
}

// Verbose prints when verbosity ≥ 2. Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.level >= LogVerbose {
		l.write("VRB", format, args...)
	}
}

// Debug prints when verbosity ≥ 3. Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogDebug {
		l.write("DBG", format, args...)
	}
}

func (l *Logger) write(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.timestamps {
		fmt.Fprintf(l.output, "%s [%s] %s\n", time.Now().Format("15:04:05.000"), level, msg)
	} else {
		fmt.Fprintf(l.output, "[%s] %s\n", level, msg)
	}
}
