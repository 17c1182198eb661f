package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildFallsBackToInfo(t *testing.T) {
	l, cleanup := Build(Options{Level: "nonsense"})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestRotateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := NewWithRotate("debug", true, FileRotate{Filename: path, MaxSizeMB: 1})
	l.Info("hello", zap.String("k", "v"))
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestToWriterTrimsNewline(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	n, err := w.Write([]byte("gin says hi\n"))
	require.NoError(t, err)
	assert.Equal(t, len("gin says hi\n"), n)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "gin says hi", e.Message)
	assert.Equal(t, zapcore.WarnLevel, e.Level)
}
