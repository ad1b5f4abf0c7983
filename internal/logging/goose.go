package logging

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// GooseLogger adapts a zerolog.Logger to goose's logger so migration output
// lands in the same JSON stream as the rest of the service.
type GooseLogger struct {
	logger zerolog.Logger
}

func NewGooseLogger(logger zerolog.Logger) *GooseLogger {
	return &GooseLogger{logger: logger.With().Str("component", "migrate").Logger()}
}

func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
