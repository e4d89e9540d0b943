package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Unknown levels fall back to
// info; format "console" gets a human-readable writer, anything else stays
// JSON.
func Init(level, format string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(os.Stdout)
	if strings.ToLower(format) == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	log.Logger = logger.With().Timestamp().Logger()
}
