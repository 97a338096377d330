package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileAppendsWithComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	logger, closer, err := NewFile(path, "pos", "debug")
	require.NoError(t, err)

	logger.WithField("sale_id", 42).Info("sale recorded")
	logger.Debug("debug line")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "component=pos")
	assert.Contains(t, string(data), "sale_id=42")
	assert.Contains(t, string(data), "debug line")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	logger, closer, err := NewFile(path, "pos", "chatty")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}
