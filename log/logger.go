package log

import (
	"io/ioutil"
	L "log"
)

// Logger handles logging.
type Logger interface {
	Debugf(tmpl string, args ...interface{})
	Errorf(tmpl string, args ...interface{})
	Infof(tmpl string, args ...interface{})
	Warnf(tmpl string, args ...interface{})
	// With returns a Logger carrying the given key value pairs on every entry.
	With(keysAndValues ...interface{}) Logger
}

// NewNoop returns a NoopLogger.
func NewNoop() Logger {
	return &noopLogger{
		l: L.New(ioutil.Discard, "[BITPIPE] ", 0),
	}
}

// OrNoop returns l, or a NoopLogger if l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NewNoop()
	}
	return l
}

type noopLogger struct {
	l *L.Logger
}

func (n *noopLogger) Debugf(tmpl string, args ...interface{}) {
	n.l.Printf(tmpl, args...)
}

func (n *noopLogger) Errorf(tmpl string, args ...interface{}) {
	n.l.Printf(tmpl, args...)
}

func (n *noopLogger) Infof(tmpl string, args ...interface{}) {
	n.l.Printf(tmpl, args...)
}

func (n *noopLogger) Warnf(tmpl string, args ...interface{}) {
	n.l.Printf(tmpl, args...)
}

func (n *noopLogger) With(keysAndValues ...interface{}) Logger {
	return n
}
