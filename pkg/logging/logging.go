package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const EnvLogLevel = "SCOPECTL_LOG_LEVEL"

func ParseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "disabled", "none":
		return zerolog.Disabled, nil
	}
	return zerolog.InfoLevel, errors.Errorf("unknown log level %q", raw)
}

// Configure installs the process-wide logger. SCOPECTL_LOG_LEVEL wins over
// level when set to a valid value.
func Configure(app, level string, out io.Writer) (zerolog.Logger, error) {
	if env := os.Getenv(EnvLogLevel); env != "" {
		if _, err := ParseLevel(env); err == nil {
			level = env
		}
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return log.Logger, err
	}
	if out == nil {
		out = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
	zerolog.SetGlobalLevel(lvl)
	log.Logger = logger
	return logger, nil
}
