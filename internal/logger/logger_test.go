package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	require.NoError(t, Init(Options{}))
	t.Cleanup(func() { _ = Init(Options{}) })
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInitWriter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Writer: &out, Level: slog.LevelDebug}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Debug("mapped page", "page", "0x1000")
	assert.Contains(t, out.String(), "mapped page")
	assert.Contains(t, out.String(), "page=0x1000")
}

func TestInitJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Writer: &out, JSON: true}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Debug("hidden")
	Info("heap ready", "size", 1024)
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"heap ready"`)
	assert.Contains(t, out.String(), `"size":1024`)
}

func TestInitLogDirCleansOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, logPrefix+time.Now().AddDate(0, 0, -retentionDays-5).Format("2006-01-02")+logSuffix)
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))

	require.NoError(t, Init(Options{Enabled: true, LogDir: dir}))
	t.Cleanup(func() { _ = Init(Options{}) })

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "stale log should be removed")

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	_, err = os.Stat(today)
	assert.NoError(t, err)
}

func TestInitClosesPreviousLogFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Enabled: true, LogDir: dir}))
	t.Cleanup(func() { _ = Init(Options{}) })
	first := logFile
	require.NotNil(t, first)

	require.NoError(t, Init(Options{Enabled: true, LogDir: dir}))
	second := logFile
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	_, err := first.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed, "re-Init closes the earlier file")

	require.NoError(t, Init(Options{}))
	assert.Nil(t, logFile)
	_, err = second.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed, "disabling closes the file")
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestAllocLogging(t *testing.T) {
	t.Setenv(AllocEnv, "")
	assert.False(t, AllocLogging())
	t.Setenv(AllocEnv, "1")
	assert.True(t, AllocLogging())
}
