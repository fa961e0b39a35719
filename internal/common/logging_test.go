package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithOutput_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("row", "3").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"row":"3"`)
}

func TestNewLoggerFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "budgeter.log")
	logger, err := NewLoggerFromConfig(LoggingConfig{Level: "info", Format: "json", Outputs: []string{"file"}, FilePath: path})
	require.NoError(t, err)

	logger.Info().Msg("written to file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewLoggerFromConfig_UnknownOutput(t *testing.T) {
	_, err := NewLoggerFromConfig(LoggingConfig{Outputs: []string{"syslog"}})
	assert.Error(t, err)
}
