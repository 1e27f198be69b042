package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fresh database and downloads directory.
func setupEnv(t *testing.T) (dbPath, downloads string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "data", "archive.db")
	downloads = filepath.Join(dir, "downloads")
	t.Setenv("ARCHREPORT_DB", dbPath)
	t.Setenv("ARCHREPORT_DOWNLOADS", downloads)
	t.Setenv("ARCHREPORT_CULTURE", "en")
	return dbPath, downloads
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func importFixture(t *testing.T) {
	t.Helper()
	out, err := run(t, "import", filepath.Join("..", "..", "internal", "store", "testdata", "fonds.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 11 descriptions")
}

func TestReportCommand_WritesCSV(t *testing.T) {
	_, downloads := setupEnv(t)
	importFixture(t)

	out, err := run(t, "report", "alpha-fonds", "--type", "itemList", "--format", "csv", "--sort-by", "title")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	data, err := os.ReadFile(filepath.Join(downloads, "alpha-fonds-itemList.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Archival description hierarchy:\n"))
	assert.Contains(t, string(data), "ABC-S1-F1-10,item10")
}

func TestReportCommand_InvalidFormatFails(t *testing.T) {
	_, downloads := setupEnv(t)
	importFixture(t)

	out, err := run(t, "report", "alpha-fonds", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid report format: xml")
	_, statErr := os.Stat(downloads)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBatchAndJobsCommands(t *testing.T) {
	_, downloads := setupEnv(t)
	importFixture(t)

	out, err := run(t, "batch", "alpha-fonds", "beta-fonds", "alpha-fonds", "--format", "html", "--concurrency", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "completed"))
	assert.FileExists(t, filepath.Join(downloads, "alpha-fonds-itemList.html"))
	assert.FileExists(t, filepath.Join(downloads, "beta-fonds-itemList.html"))

	_, err = run(t, "report", "missing-slug")
	require.Error(t, err)

	out, err = run(t, "jobs", "--limit", "10")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "completed"))
	assert.Contains(t, out, "Could not find an information object with id: missing-slug")
}

func TestJobsCommand_Empty(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs recorded")
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "archreport "))
}

func TestInvalidDriverRejected(t *testing.T) {
	setupEnv(t)
	t.Setenv("ARCHREPORT_DB_DRIVER", "postgres")
	_, err := run(t, "jobs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database driver")
}
