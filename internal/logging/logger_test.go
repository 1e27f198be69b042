package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, o Options) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	InitializeWithLogger(zap.New(core), o)
	t.Cleanup(func() { InitializeWithLogger(zap.NewNop(), Options{}) })
	return logs
}

func TestGet_NamesLoggerByCategory(t *testing.T) {
	logs := observe(t, Options{})

	Store("opened %s", "archive.db")
	Get(CategoryJob).Warn("job %d failed", 7)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "store", entries[0].LoggerName)
	assert.Equal(t, "opened archive.db", entries[0].Message)
	assert.Equal(t, "job", entries[1].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestGet_DisabledCategoryIsNoop(t *testing.T) {
	logs := observe(t, Options{Categories: map[string]bool{"render": false}})

	Render("wrote %d bytes", 10)
	Collect("collected %d rows", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "collect", entries[0].LoggerName)
	assert.False(t, IsCategoryEnabled(CategoryRender))
}

func TestLogger_With(t *testing.T) {
	logs := observe(t, Options{})

	Get(CategoryJob).With("job_id", "abc").Info("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["job_id"])
}

func TestTimer_StopWithThreshold(t *testing.T) {
	logs := observe(t, Options{})

	timer := StartTimer(CategoryCollect, "Collect")
	timer.start = time.Now().Add(-2 * time.Second)
	timer.StopWithThreshold(time.Second)

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Message, "Collect took"))
}

func TestInitialize_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archreport.log")
	t.Cleanup(func() { InitializeWithLogger(zap.NewNop(), Options{}) })

	require.NoError(t, Initialize(Options{Level: "info", Format: "json", File: path}))
	Job("report %s completed", "itemList")
	Get(CategoryJob).Debug("hidden at info level")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"job"`)
	assert.Contains(t, string(data), "report itemList completed")
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestInitialize_RejectsUnknownLevel(t *testing.T) {
	err := Initialize(Options{Level: "chatty"})
	assert.Error(t, err)
}
