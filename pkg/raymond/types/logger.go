package types

// Logger is the logging capability every component depends on. The default
// implementation lives in pkg/raymond/definition and wraps logrus.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	ToggleDebug(value bool) bool
	// WithField returns a derived logger that tags every subsequent line,
	// used to attach the owning node's name to its log output.
	WithField(key string, value interface{}) Logger
}
