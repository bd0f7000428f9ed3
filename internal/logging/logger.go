// Package logging provides simple structured logging for qnxcomm.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogLevel represents the available log levels
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
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config holds logging configuration.
type Config struct {
	Level  LogLevel
	Format string // "text" (default) or "json"
	Output io.Writer
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// Logger writes level-gated, field-annotated log lines. Fields accumulate
// across With* calls so call sites can stamp pid/chid/coid/rcvid once and
// have every subsequent line carry them.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  LogLevel
	format string
	fields []field
}

type field struct {
	key string
	val any
}

// NewLogger creates a new logger from config; nil uses DefaultConfig.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	format := config.Format
	if format == "" {
		format = "text"
	}
	return &Logger{out: output, level: config.Level, format: format}
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Default returns the default logger, creating it if necessary.
func Default() *Logger {
	defaultMu.RLock()
	if defaultLogger != nil {
		defer defaultMu.RUnlock()
		return defaultLogger
	}
	defaultMu.RUnlock()

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault replaces the package default logger.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// with returns a derived logger carrying an additional field.
func (l *Logger) with(key string, val any) *Logger {
	next := &Logger{out: l.out, level: l.level, format: l.format}
	next.fields = append(next.fields, l.fields...)
	next.fields = append(next.fields, field{key, val})
	return next
}

// WithChannel stamps a chid onto every subsequent line from this logger.
func (l *Logger) WithChannel(chid int32) *Logger { return l.with("chid", chid) }

// WithConnection stamps a coid onto every subsequent line from this logger.
func (l *Logger) WithConnection(coid int32) *Logger { return l.with("coid", coid) }

// WithProcess stamps a pid onto every subsequent line from this logger.
func (l *Logger) WithProcess(pid int32) *Logger { return l.with("pid", pid) }

// WithRcvid stamps a rcvid onto every subsequent line from this logger.
func (l *Logger) WithRcvid(rcvid int64) *Logger { return l.with("rcvid", rcvid) }

// WithError stamps an error string onto every subsequent line from this logger.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with("error", err.Error())
}

func formatArgs(args []any) []field {
	var fs []field
	for i := 0; i+1 < len(args); i += 2 {
		key := fmt.Sprintf("%v", args[i])
		fs = append(fs, field{key, args[i+1]})
	}
	return fs
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.level {
		return
	}
	all := append(append([]field{}, l.fields...), formatArgs(args)...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.format == "json" {
		m := map[string]any{"level": level.String(), "msg": msg}
		for _, f := range all {
			m[f.key] = f.val
		}
		b, err := json.Marshal(m)
		if err != nil {
			fmt.Fprintf(l.out, "{\"level\":%q,\"msg\":%q}\n", level.String(), msg)
			return
		}
		fmt.Fprintln(l.out, string(b))
		return
	}

	line := fmt.Sprintf("[%s] %s", level.String(), msg)
	for _, f := range all {
		line += fmt.Sprintf(" %s=%v", f.key, f.val)
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Debugf, Infof, Warnf, Errorf provide printf-style logging for call sites
// that already have a formatted string rather than key/value pairs.
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// Global convenience functions delegate to the default logger.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
