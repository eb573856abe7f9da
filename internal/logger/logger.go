package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options tunes the logger built by NewLogger.
type Options struct {
	// Level overrides the env default: debug, info, warn, error.
	Level string
	// File, if set, receives a copy of every log line next to stderr.
	File string
}

// NewLogger creates a zap logger for the given environment.
// prod writes JSON, local/dev write colored console output.
func NewLogger(env string, opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, opts.File)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
