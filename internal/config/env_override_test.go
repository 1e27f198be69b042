package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("ARCHREPORT_DB sets database path", func(t *testing.T) {
		t.Setenv("ARCHREPORT_DB", "/tmp/other.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	})

	t.Run("ARCHREPORT_DB_DRIVER selects cgo driver", func(t *testing.T) {
		t.Setenv("ARCHREPORT_DB_DRIVER", "sqlite3")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "sqlite3", cfg.Database.Driver)
		require.NoError(t, cfg.Validate())
	})

	t.Run("ARCHREPORT_DOWNLOADS and ARCHREPORT_CULTURE", func(t *testing.T) {
		t.Setenv("ARCHREPORT_DOWNLOADS", "/var/reports")
		t.Setenv("ARCHREPORT_CULTURE", "fr")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "/var/reports", cfg.Reports.DownloadsDir)
		assert.Equal(t, "fr", cfg.Reports.Culture)
	})

	t.Run("non-numeric batch concurrency is ignored", func(t *testing.T) {
		t.Setenv("ARCHREPORT_BATCH_CONCURRENCY", "many")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 4, cfg.Reports.Batch.Concurrency)
	})

	t.Run("env overrides win over file values", func(t *testing.T) {
		t.Setenv("ARCHREPORT_DB", "/env.db")

		path := t.TempDir() + "/config.yaml"
		cfg := DefaultConfig()
		cfg.Database.Path = "/file.db"
		require.NoError(t, cfg.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/env.db", loaded.Database.Path)
	})
}
