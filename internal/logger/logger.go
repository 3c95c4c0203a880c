package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoding and verbosity of the process logger.
type Config struct {
	JSON  bool
	Debug bool
	// Output is a zap sink path. Defaults to stdout.
	Output string
}

func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if cfg.JSON {
		encoding = "json"
	}

	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}

	zc := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	return zc.Build()
}
