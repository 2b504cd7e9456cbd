package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetupWriter_JSON(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	SetupWriter(&buf, "debug", FormatJSON)
	log.Debug().Str("k", "v").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestSetupWriter_Level(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	SetupWriter(&buf, "warn", FormatJSON)
	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetupWriter_UnknownLevelIsInfo(t *testing.T) {
	restoreGlobals(t)

	SetupWriter(&bytes.Buffer{}, "loud", FormatJSON)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetupWriter(&bytes.Buffer{}, "", FormatJSON)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetupWriter_Console(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	SetupWriter(&buf, "info", FormatConsole)
	log.Info().Msg("readable")

	assert.Contains(t, buf.String(), "readable")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestComponent(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	SetupWriter(&buf, "info", FormatJSON)
	l := Component("store")
	l.Info().Msg("x")

	assert.Contains(t, buf.String(), `"component":"store"`)
}
