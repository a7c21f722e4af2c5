package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "roost.log")

	logger, err := New("debug", path)
	require.NoError(t, err)
	logger.Debug("snapshot loaded", zap.String("key", "preferences"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "snapshot loaded", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "preferences", entry["key"])
}

func TestNew_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roost.log")

	logger, err := New("warn", path)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", filepath.Join(t.TempDir(), "roost.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}
