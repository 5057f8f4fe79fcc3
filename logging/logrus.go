package logging

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to the Logger interface
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a logrus-backed logger writing to out.
// format is "json" or "text".
func NewLogrusLogger(out io.Writer, format string) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// WrapLogrus adapts an existing application logrus logger
func WrapLogrus(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) with(fields []Fields) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	merged := logrus.Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return l.entry.WithFields(merged)
}

func (l *LogrusLogger) Debug(msg string, fields ...Fields) {
	l.with(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields ...Fields) {
	l.with(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields ...Fields) {
	l.with(fields).Warn(msg)
}

func (l *LogrusLogger) Error(err error, msg string, fields ...Fields) {
	l.with(fields).WithError(err).Error(msg)
}

// Fatal logs and lets logrus exit the process
func (l *LogrusLogger) Fatal(err error, msg string, fields ...Fields) {
	l.with(fields).WithError(err).Fatal(msg)
}

func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return l.WithFields(fields)
	}
	return l
}

func (l *LogrusLogger) SetLevel(level Level) {
	l.entry.Logger.SetLevel(toLogrusLevel(level))
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
