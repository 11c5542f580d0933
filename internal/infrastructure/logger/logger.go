// Package logger builds the console's zap loggers and carries them through
// gin and request contexts.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and sink of the console log.
// Output is stdout, stderr or a file path.
type Config struct {
	Level      string
	Format     string // json or console
	Output     string
	TimeFormat string
	// Service is stamped on every entry when set
	Service string
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ForEnvironment returns the log config used when nothing is configured:
// JSON in production, coloured console output elsewhere.
func ForEnvironment(env string) *Config {
	format := "console"
	if env == "production" {
		format = "json"
	}
	return &Config{Level: "info", Format: format, Output: "stdout", TimeFormat: defaultTimeFormat}
}

// New builds a logger from cfg. Extra cores, such as the OTLP bridge, are
// teed next to the local sink.
func New(cfg *Config, extra ...zapcore.Core) (*zap.Logger, error) {
	sink, _, err := zap.Open(outputPath(cfg.Output))
	if err != nil {
		return nil, fmt.Errorf("open log output %q: %w", cfg.Output, err)
	}

	core := zapcore.NewCore(encoderFor(cfg), sink, ParseLevel(cfg.Level))
	if len(extra) > 0 {
		core = zapcore.NewTee(append([]zapcore.Core{core}, extra...)...)
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zap.New(core, opts...), nil
}

// ParseLevel maps a configured level name to a zap level. Unknown names
// log at info.
func ParseLevel(level string) zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	parsed, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

func encoderFor(cfg *Config) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = defaultTimeFormat
	}

	if cfg.Format == "console" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return zapcore.NewJSONEncoder(ec)
}

// outputPath turns the configured output into a zap sink URL. An empty
// value means stdout.
func outputPath(output string) string {
	switch o := strings.TrimSpace(output); strings.ToLower(o) {
	case "", "stdout":
		return "stdout"
	case "stderr":
		return "stderr"
	default:
		return o
	}
}

// Sync flushes buffered entries
func Sync(logger *zap.Logger) error {
	return logger.Sync()
}
