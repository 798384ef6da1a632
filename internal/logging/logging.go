// Package logging builds the zap logger used by the CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/qextract/internal/model"
)

// New builds a logger writing to stderr. level is debug, info, warn or
// error; format is console or json. Empty values mean info and console.
func New(level, format string) (*zap.Logger, error) {
	cfg, err := Config(level, format)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// FromConfig builds a logger from the logging config section. verbose
// forces debug level.
func FromConfig(cfg model.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	return New(level, cfg.Format)
}

// Config returns the zap configuration New would build
func Config(level, format string) (zap.Config, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return zap.Config{}, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	var encoder zapcore.EncoderConfig
	switch strings.ToLower(format) {
	case "", "console":
		format = "console"
		encoder = zap.NewDevelopmentEncoderConfig()
	case "json":
		format = "json"
		encoder = zap.NewProductionEncoderConfig()
		encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return zap.Config{}, fmt.Errorf("log format %q: want console or json", format)
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          format,
		EncoderConfig:     encoder,
		DisableStacktrace: lvl > zapcore.DebugLevel,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}
