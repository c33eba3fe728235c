package shared

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown", "player", "p1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "player=p1")
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	logger, err := NewLogger(&bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestSetupFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	logger, closer, err := SetupFileLogger(path, "debug")
	require.NoError(t, err)
	logger.Debug("written")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
