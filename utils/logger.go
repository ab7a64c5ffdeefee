package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	entry *logrus.Logger
}

// NewLogger creates a Logger writing text lines to stdout at info level.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Logger{entry: l}
}

// Configure applies level, format ("text" or "json") and output
// ("stdout", "stderr" or a file path). File output is rotated when maxAge > 0.
func (l *Logger) Configure(level, format, output string, maxAge int) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("logger: invalid level %q", level)
	}
	l.entry.SetLevel(lvl)

	switch format {
	case "json":
		l.entry.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		l.entry.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		return fmt.Errorf("logger: invalid format %q", format)
	}

	switch output {
	case "stdout", "":
		l.entry.SetOutput(os.Stdout)
	case "stderr":
		l.entry.SetOutput(os.Stderr)
	default:
		if maxAge > 0 {
			l.entry.SetOutput(&lumberjack.Logger{
				Filename: output,
				MaxAge:   maxAge,
				MaxSize:  100,
				Compress: true,
			})
			return nil
		}
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("logger: open %q: %w", output, err)
		}
		l.entry.SetOutput(f)
	}
	return nil
}

// SetOutput redirects log lines, mainly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.entry.SetOutput(w)
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
