// Package logger wraps logrus behind a small interface so the parsing
// and reconciliation layers can log with component context without
// binding callers to a concrete logging backend.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging contract used across the module.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithComponent(component string) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New returns a logger writing human-readable lines to stderr at info
// level.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "15:04:05",
		FullTimestamp:   true,
	})
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// NewNop returns a logger that discards everything. Tests and library
// callers that want silence use this.
func NewNop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// SetVerbose switches a logger created by New to debug level.
func SetVerbose(log Logger, verbose bool) {
	ll, ok := log.(*logrusLogger)
	if !ok {
		return
	}
	if verbose {
		ll.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		ll.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *logrusLogger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithComponent(component string) Logger {
	return l.WithField("component", component)
}
