package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cancerscope/config"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, level, err := New(config.LogConfig{
		Level:  "info",
		Format: "console",
		File:   config.LogFileConfig{Path: path, MaxSizeMB: 1},
	})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("prediction served", zap.String("model", "svm"))
	level.SetLevel(zapcore.DebugLevel)
	logger.Debug("now visible")
	_ = logger.Sync()

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(payload)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, `"model":"svm"`)
	assert.Contains(t, content, "now visible")
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(content), "\n")+1)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, _, err = New(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)
}
