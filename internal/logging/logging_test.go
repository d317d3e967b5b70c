package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible", zap.String("component", "test"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.NotEmpty(t, entry["ts"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, zap.InfoLevel, lvl)

	lvl, err = parseLevel(" WARN ")
	assert.NoError(t, err)
	assert.Equal(t, zap.WarnLevel, lvl)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}
