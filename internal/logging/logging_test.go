package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-billing-console/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

// restoreGlobals puts the global logger and level back after the test.
func restoreGlobals(t *testing.T) {
	t.Helper()
	level, logger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		log.Logger = logger
	})
}

func TestSetupWriter_JSONOutsideDev(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "PROD", "warn", false)

	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "/admin").Msg("shown")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "warn", rec["level"])
	require.Equal(t, "shown", rec["message"])
	require.Equal(t, "/admin", rec["path"])
}

func TestSetupWriter_VerboseForcesDebug(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "PROD", "error", true)
	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger.Debug().Msg("debug")
	require.Contains(t, buf.String(), `"message":"debug"`)
}

func TestSetupWriter_BadLevelFallsBackToInfo(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "DEV", "loud", false)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Info().Msg("console")
	require.Contains(t, buf.String(), "console")
	require.NotContains(t, buf.String(), `"message"`)
}
