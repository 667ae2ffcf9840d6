/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Logger is the minimal logging interface used by the scheduler, the harness
// and the recording packages. It is designed to be easily adaptable to any
// logging library.
type Logger interface {
	// Log is invoked with the log level, the log message, and key/value pairs
	// of any relevant log details. The keys are always strings, while the
	// values are unspecified.
	Log(level LogLevel, text string, args ...interface{})
}

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// ParseLevel maps a level name (case insensitive) to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Errorf("unknown log level %q", name)
	}
}

// consoleLogger writes key/value formatted lines to an output stream.
type consoleLogger struct {
	level  LogLevel
	output io.Writer
}

// NewConsoleLogger returns a Logger writing every message at or above level to output.
func NewConsoleLogger(output io.Writer, level LogLevel) Logger {
	return &consoleLogger{
		level:  level,
		output: output,
	}
}

// Log writes the message followed by its key/value pairs. Byte slices are
// printed in base 16, a key without a value is flagged as missing.
func (l *consoleLogger) Log(level LogLevel, text string, args ...interface{}) {
	if level < l.level {
		return
	}

	fmt.Fprint(l.output, text)
	for i := 0; i < len(args); i++ {
		if i+1 < len(args) {
			switch args[i+1].(type) {
			case []byte:
				fmt.Fprintf(l.output, " %s=%x", args[i], args[i+1])
			default:
				fmt.Fprintf(l.output, " %s=%v", args[i], args[i+1])
			}
			i++
		} else {
			fmt.Fprintf(l.output, " %s=%%MISSING%%", args[i])
		}
	}
	fmt.Fprintf(l.output, "\n")
}

// The nil logger drops all messages.
type nilLogger struct{}

func (nl *nilLogger) Log(level LogLevel, text string, args ...interface{}) {}

var (
	// ConsoleDebugLogger implements Logger and writes all log messages to stdout.
	ConsoleDebugLogger = NewConsoleLogger(os.Stdout, LevelDebug)

	// ConsoleInfoLogger implements Logger and writes all LevelInfo and above log messages to stdout.
	ConsoleInfoLogger = NewConsoleLogger(os.Stdout, LevelInfo)

	// ConsoleWarnLogger implements Logger and writes all LevelWarn and above log messages to stdout.
	ConsoleWarnLogger = NewConsoleLogger(os.Stdout, LevelWarn)

	// ConsoleErrorLogger implements Logger and writes all LevelError log messages to stdout.
	ConsoleErrorLogger = NewConsoleLogger(os.Stdout, LevelError)

	// NilLogger drops all log messages.
	NilLogger Logger = &nilLogger{}
)

// OrNil returns logger, or NilLogger if logger is nil.
func OrNil(logger Logger) Logger {
	if logger == nil {
		return NilLogger
	}
	return logger
}
