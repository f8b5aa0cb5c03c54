package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, InitLogger(Options{Level: "warn", File: file, MaxSize: 1, MaxBackups: 1, MaxAge: 1}))

	Logger.Info("不应写入")
	Logger.Warn("应写入")
	_ = Logger.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "应写入")
	assert.NotContains(t, string(data), "不应写入")
	assert.Same(t, Logger, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(Options{Level: "loud"}))
}
