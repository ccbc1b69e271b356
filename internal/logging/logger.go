package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the logging level.
type Level int

const (
	// LevelDebug is the most verbose level.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a string into a Level. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format represents the log output format.
type Format int

const (
	// FormatText outputs logs through zap's console encoder.
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format.
	FormatJSON
)

// ParseFormat parses a string into a Format.
func ParseFormat(s string) Format {
	switch s {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Logger is the interface for structured logging.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})
	// Info logs an info message with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})
	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})
	// Error logs an error message with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
	// WithRequestID returns a new logger with the given request ID.
	WithRequestID(requestID string) Logger
	// WithFields returns a new logger with the given fields.
	WithFields(keysAndValues ...interface{}) Logger
	// WithSource returns a new logger tagged with the emitting component.
	WithSource(source string) Logger
}

// Config holds the logger configuration.
type Config struct {
	Level  string
	Format string
	Output string
}

// logger adapts a zap SugaredLogger to Logger.
type logger struct {
	sugar *zap.SugaredLogger
	// file is the log file opened by New, shared with derived loggers.
	file *os.File
}

// New creates a new Logger with the given configuration. An output path
// that cannot be opened falls back to stdout. A logger writing to a file
// must be released with Close.
func New(cfg Config) Logger {
	switch cfg.Output {
	case "", "stdout":
		return newWithWriter(cfg, os.Stdout)
	case "stderr":
		return newWithWriter(cfg, os.Stderr)
	}
	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return newWithWriter(cfg, os.Stdout)
	}
	l := newWithWriter(cfg, f).(*logger)
	l.file = f
	return l
}

// NewDefault creates a new Logger with default settings.
func NewDefault() Logger {
	return New(Config{Level: "info", Format: "text"})
}

// NewNop creates a no-op logger that discards all output.
func NewNop() Logger {
	return &logger{sugar: zap.NewNop().Sugar()}
}

func newWithWriter(cfg Config, w io.Writer) Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	var enc zapcore.Encoder
	if ParseFormat(cfg.Format) == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level).zapLevel())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return &logger{sugar: zap.New(core).Sugar()}
}

// Debug logs a debug message.
func (l *logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs an info message.
func (l *logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a warning message.
func (l *logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs an error message.
func (l *logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// WithRequestID returns a new logger with the given request ID.
func (l *logger) WithRequestID(requestID string) Logger {
	return &logger{sugar: l.sugar.With("request_id", requestID), file: l.file}
}

// WithFields returns a new logger with the given fields.
func (l *logger) WithFields(keysAndValues ...interface{}) Logger {
	return &logger{sugar: l.sugar.With(keysAndValues...), file: l.file}
}

// WithSource returns a new logger with a source field.
func (l *logger) WithSource(source string) Logger {
	return &logger{sugar: l.sugar.With("source", source), file: l.file}
}

// Sync flushes buffered entries of loggers created by New.
func Sync(l Logger) error {
	if zl, ok := l.(*logger); ok {
		return zl.sugar.Sync()
	}
	return nil
}

// Close flushes l and closes the log file New opened for it. Loggers
// derived from l must not be used afterwards.
func Close(l Logger) error {
	zl, ok := l.(*logger)
	if !ok || zl.file == nil {
		return Sync(l)
	}
	zl.sugar.Sync()
	return zl.file.Close()
}
