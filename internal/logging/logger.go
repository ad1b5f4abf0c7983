package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/config"
)

// NewLogger creates a structured zerolog.Logger writing JSON to stdout with
// context fields from the config. Non-empty fields are added automatically.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	if cfg.StoreProvider != "" {
		ctx = ctx.Str("store", cfg.StoreProvider)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
