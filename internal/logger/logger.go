package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every production log line.
const Service = "kmsearch"

// NewLogger builds the process logger for env.
// prod writes JSON with a service field, local and dev write colored console
// output, test discards everything. level (debug, info, warn, error) overrides
// the environment default when non-empty. All output goes to stderr so CLI
// commands can print JSON results on stdout.
func NewLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	var opts []zap.Option
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
		opts = append(opts, zap.Fields(zap.String("service", Service)))
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "test":
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg.OutputPaths = []string{"stderr"}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	l, err := cfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
