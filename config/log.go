package config

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger types.
const (
	LogStream = "stream"
	LogFile   = "file"
)

// Log severities of the runtime.log section.
const (
	LevelDebug     = 100
	LevelInfo      = 200
	LevelNotice    = 250
	LevelWarning   = 300
	LevelError     = 400
	LevelCritical  = 500
	LevelAlert     = 550
	LevelEmergency = 600
)

// LogLevels are the accepted severities.
var LogLevels = []int{
	LevelDebug,
	LevelInfo,
	LevelNotice,
	LevelWarning,
	LevelError,
	LevelCritical,
	LevelAlert,
	LevelEmergency,
}

// LogLevel maps a severity to its zerolog level. Zero maps to info.
func LogLevel(severity int) zerolog.Level {
	switch {
	case severity == 0:
		return zerolog.InfoLevel
	case severity < LevelInfo:
		return zerolog.DebugLevel
	case severity < LevelWarning:
		return zerolog.InfoLevel
	case severity < LevelError:
		return zerolog.WarnLevel
	case severity < LevelCritical:
		return zerolog.ErrorLevel
	case severity < LevelEmergency:
		return zerolog.FatalLevel
	default:
		return zerolog.PanicLevel
	}
}

// DefaultLogger is the logger used by the command line when configured.
const DefaultLogger = "defaultLogger"

// Logger builds the named logger of the runtime.log section. The returned
// closer releases the log file, if any. The second value is false when the
// logger is not configured.
func (c *Config) Logger(name string) (zerolog.Logger, io.Closer, bool, error) {
	l, ok := c.Runtime.Log[name]
	if !ok {
		return zerolog.Nop(), io.NopCloser(nil), false, nil
	}
	var (
		out    io.Writer
		closer io.Closer = io.NopCloser(nil)
	)
	switch {
	case l.Type == LogFile:
		f, err := os.OpenFile(c.Path(l.Path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, true, fmt.Errorf("config: open log %s: %w", name, err)
		}
		out, closer = f, f
	case l.Path == "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	default:
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	logger := zerolog.New(out).
		Level(LogLevel(l.Level)).
		With().
		Timestamp().
		Str("logger", name).
		Logger()
	return logger, closer, true, nil
}
