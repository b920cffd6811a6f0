package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Available log formats.
const (
	FormatConsole = `console`
	FormatJSON    = `json`
)

// NewZap returns a Logger backed by zap writing to stderr.
func NewZap(level, format string) (Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	var cfg zap.Config
	switch format {
	case "", FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = FormatConsole
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case FormatJSON:
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build logger: %w", err)
	}
	return FromZap(z), nil
}

// FromZap wraps an existing zap Logger.
func FromZap(z *zap.Logger) Logger {
	return &zapLogger{z.Sugar()}
}

// Sync flushes any buffered entries if l is backed by zap.
func Sync(l Logger) error {
	if z, ok := l.(*zapLogger); ok {
		return z.s.Sync()
	}
	return nil
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (z *zapLogger) Debugf(tmpl string, args ...interface{}) {
	z.s.Debugf(tmpl, args...)
}

func (z *zapLogger) Errorf(tmpl string, args ...interface{}) {
	z.s.Errorf(tmpl, args...)
}

func (z *zapLogger) Infof(tmpl string, args ...interface{}) {
	z.s.Infof(tmpl, args...)
}

func (z *zapLogger) Warnf(tmpl string, args ...interface{}) {
	z.s.Warnf(tmpl, args...)
}

func (z *zapLogger) With(keysAndValues ...interface{}) Logger {
	return &zapLogger{z.s.With(keysAndValues...)}
}
