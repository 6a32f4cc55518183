package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"TRACE":   zerolog.TraceLevel,
		" debug ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	} {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestConfigure_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	logger, err := Configure("test", "debug", &buf)
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	logger.Error().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestConfigure_BadLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	_, err := Configure("test", "loud", nil)
	require.Error(t, err)
}
