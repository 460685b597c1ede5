// Package definition holds the default implementations of the small
// capability interfaces the rest of the module depends on, the way the
// teacher's definition package holds its DefaultLogger.
package definition

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// DefaultLogger is the logging implementation used if the caller does not
// provide its own. It wraps a *logrus.Entry instead of the standard
// library *log.Logger the teacher wraps, but exposes the same level
// vocabulary.
type DefaultLogger struct {
	entry *logrus.Entry
	base  *logrus.Logger
}

// NewDefaultLogger builds a DefaultLogger writing to stderr with logrus's
// text formatter, debug level disabled until ToggleDebug(true) is called.
func NewDefaultLogger() *DefaultLogger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
	return &DefaultLogger{
		entry: logrus.NewEntry(base),
		base:  base,
	}
}

func (l *DefaultLogger) Info(v ...interface{}) {
	l.entry.Info(v...)
}

func (l *DefaultLogger) Infof(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

func (l *DefaultLogger) Warn(v ...interface{}) {
	l.entry.Warn(v...)
}

func (l *DefaultLogger) Warnf(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

func (l *DefaultLogger) Error(v ...interface{}) {
	l.entry.Error(v...)
}

func (l *DefaultLogger) Errorf(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

func (l *DefaultLogger) Debug(v ...interface{}) {
	l.entry.Debug(v...)
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *DefaultLogger) Fatal(v ...interface{}) {
	l.entry.Fatal(v...)
}

func (l *DefaultLogger) Fatalf(format string, v ...interface{}) {
	l.entry.Fatalf(format, v...)
}

// ToggleDebug flips the minimum level between info and debug, returning
// the new state, matching the teacher's DefaultLogger.ToggleDebug.
func (l *DefaultLogger) ToggleDebug(value bool) bool {
	if value {
		l.base.SetLevel(logrus.DebugLevel)
	} else {
		l.base.SetLevel(logrus.InfoLevel)
	}
	return value
}

// WithField returns a derived logger tagging every subsequent line with
// key=value, used to attach a node's name to its own log output.
func (l *DefaultLogger) WithField(key string, value interface{}) types.Logger {
	return &DefaultLogger{
		entry: l.entry.WithField(key, value),
		base:  l.base,
	}
}
