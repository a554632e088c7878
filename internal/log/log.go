// Package log provides structured logging for the painting kiosk.
// It wraps logrus with sensible defaults for an unattended install.
package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Options controls logger construction.
type Options struct {
	Level string // "debug", "info", "warn", "error"
	File  string // optional rotating log file
}

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error"
func Init(level string) {
	InitWithOptions(Options{Level: level})
}

// InitWithOptions initializes the global logger once. Later calls are no-ops.
func InitWithOptions(opts Options) {
	once.Do(func() {
		logger = newLogger(opts)
	})
}

func newLogger(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(parseLevel(opts.Level))

	// JSON in production, nested text in development
	if os.Getenv("GO_ENV") == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&formatter.Formatter{
			TimestampFormat: "15:04:05.000",
			HideKeys:        false,
			CallerFirst:     true,
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
			},
		})
	}

	writers := []io.Writer{os.Stdout}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 5,
		})
	}
	l.SetOutput(io.MultiWriter(writers...))
	return l
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// L returns the global logger instance.
func L() *logrus.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// fields converts slog-style key/value pairs into logrus fields.
// A dangling key is stored under "!BADKEY" like slog does.
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			f["!BADKEY"] = args[i]
			continue
		}
		f[key] = args[i+1]
	}
	return f
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().WithFields(fields(args)).Debug(msg)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().WithFields(fields(args)).Info(msg)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().WithFields(fields(args)).Warn(msg)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().WithFields(fields(args)).Error(msg)
}

// With returns a logger entry with the given attributes.
func With(args ...any) *logrus.Entry {
	return L().WithFields(fields(args))
}
