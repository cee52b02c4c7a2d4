package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/powerhald/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

var log = zerolog.Nop()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the logger based on the given configuration
func Init(debug, verbose, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(WarnLevel) // Default log level

	if debug {
		SetLogLevel(DebugLevel)
	} else if verbose {
		SetLogLevel(InfoLevel)
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// ParseLevel maps a configured level name onto a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, name)
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return unix.Getpgrp() == unix.Getpid()
}

// zeroLogger adapts a zerolog.Logger to the Logger interface.
type zeroLogger struct {
	l *zerolog.Logger
}

// Default returns the process-wide logger configured by Init.
func Default() Logger {
	return zeroLogger{l: &log}
}

// New returns a logger writing JSON lines to w. Used by tests that
// need to inspect log output.
func New(w io.Writer) Logger {
	l := zerolog.New(w).With().Timestamp().Logger()
	return zeroLogger{l: &l}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	l := zerolog.Nop()
	return zeroLogger{l: &l}
}

func (z zeroLogger) Debug() *LogEvent {
	return &LogEvent{z.l.Debug()}
}

func (z zeroLogger) Info() *LogEvent {
	return &LogEvent{z.l.Info()}
}

func (z zeroLogger) Warn() *LogEvent {
	return &LogEvent{z.l.Warn()}
}

func (z zeroLogger) Error() *LogEvent {
	return &LogEvent{z.l.Error()}
}

func (z zeroLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(z.l.Error(), err)}
}

func (z zeroLogger) WarnWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(z.l.Warn(), err)}
}

func withCode(e *zerolog.Event, err errors.Error) *zerolog.Event {
	return e.
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())
}

// Debug logs a debug message
func Debug() *LogEvent {
	return Default().Debug()
}

// Info logs an info message
func Info() *LogEvent {
	return Default().Info()
}

// Warn logs a warning message
func Warn() *LogEvent {
	return Default().Warn()
}

// Error logs an error message
func Error() *LogEvent {
	return Default().Error()
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return Default().ErrorWithCode(err)
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// FatalWithCode logs a fatal message with a specific error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(log.Fatal(), err)}
}
